/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ponyo877/signtalk/cli/cmd"

func main() {
	cmd.Execute()
}

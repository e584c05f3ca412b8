// Package dictionary reads the word to clip URL seed file and keeps the
// store in sync with it.
//
// The file is TOML:
//
//	[words]
//	"학교" = "https://cdn.example.com/sign/school.mp4"
package dictionary

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type File struct {
	Words map[string]string `toml:"words"`
}

func Load(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary file: %w", err)
	}
	return Decode(data)
}

func Decode(data []byte) (map[string]string, error) {
	var file File
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode dictionary file: %w", err)
	}
	if file.Words == nil {
		file.Words = map[string]string{}
	}
	return file.Words, nil
}

// Encode renders words in the seed file format.
func Encode(words map[string]string) ([]byte, error) {
	data, err := toml.Marshal(File{Words: words})
	if err != nil {
		return nil, fmt.Errorf("encode dictionary file: %w", err)
	}
	return data, nil
}

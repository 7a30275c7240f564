// providers.go contains the embedded and file-backed class name providers
package labels

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/pans/seld-go/internal/errors"
)

//go:embed data/classes.txt
var labelFiles embed.FS

// embeddedClassFile is the default vocabulary shipped with the binary.
const embeddedClassFile = "data/classes.txt"

// EmbeddedProvider supplies the class names embedded in the binary.
type EmbeddedProvider struct{}

// ClassNames reads the embedded vocabulary, one name per line, index order.
func (EmbeddedProvider) ClassNames(numClasses int) (map[int]string, error) {
	f, err := labelFiles.Open(embeddedClassFile)
	if err != nil {
		return nil, errors.New(fmt.Errorf("embedded class file unavailable: %w", err)).
			Component("labels").
			Category(errors.CategoryLabelLoad).
			Build()
	}
	defer f.Close()

	return readClassNames(f)
}

// FileProvider reads class names from an external file, one name per line.
type FileProvider struct {
	Path string
}

// ClassNames reads the configured file, one name per line, index order.
func (p FileProvider) ClassNames(numClasses int) (map[int]string, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("cannot open class name file: %w", err)).
			Component("labels").
			Category(errors.CategoryFileIO).
			Context("path", p.Path).
			Build()
	}
	defer f.Close()

	names, err := readClassNames(f)
	if err != nil {
		return nil, errors.New(fmt.Errorf("reading %s: %w", p.Path, err)).
			Component("labels").
			Category(errors.CategoryLabelLoad).
			Context("path", p.Path).
			Build()
	}
	return names, nil
}

// DefaultProvider returns the file provider when an external class file is
// configured and the embedded vocabulary otherwise.
func DefaultProvider(classFile string) Provider {
	if classFile != "" {
		return FileProvider{Path: classFile}
	}
	return EmbeddedProvider{}
}

// readClassNames parses one class name per line, skipping blank lines and
// '#' comments. Line order determines the class index.
func readClassNames(r io.Reader) (map[int]string, error) {
	names := make(map[int]string)
	scanner := bufio.NewScanner(r)

	index := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names[index] = line
		index++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading class names: %w", err)
	}

	return names, nil
}

// AvailableEmbeddedFiles lists the label files shipped with the binary.
func AvailableEmbeddedFiles() ([]string, error) {
	var files []string
	walkErr := fs.WalkDir(labelFiles, "data", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("error listing embedded label files: %w", walkErr)
	}
	return files, nil
}

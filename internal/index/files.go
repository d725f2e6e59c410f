package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"researcher/internal/vectorstore/flat"
)

var vectorFileMagic = [4]byte{'R', 'I', 'D', 'X'}

const metadataSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["source", "text"],
    "properties": {
      "source": {"type": "string"},
      "text": {"type": "string"}
    }
  }
}`

// writeFileAtomic writes to a temporary sibling and renames it into place,
// so readers never observe a half-written file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// writeVectors stores the embedding model name ahead of the flat index so
// a reload can tell whether the vectors are comparable with new queries.
func writeVectors(w io.Writer, model string, idx *flat.Index) error {
	if len(model) > 0xFFFF {
		return errors.New("embedding model name too long")
	}
	if _, err := w.Write(vectorFileMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(model))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, model); err != nil {
		return err
	}
	_, err := idx.WriteTo(w)
	return err
}

func readVectors(path string) (string, *flat.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	br := bufio.NewReader(f)
	var m [4]byte
	if _, err := io.ReadFull(br, m[:]); err != nil || m != vectorFileMagic {
		return "", nil, fmt.Errorf("%w: %s is not a vector index file", ErrCorrupt, path)
	}
	var n uint16
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	name := make([]byte, n)
	if _, err := io.ReadFull(br, name); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	idx, err := flat.Decode(br)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return string(name), idx, nil
}

func writeMetadata(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func readMetadata(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := validateMetadata(data); err != nil {
		return nil, err
	}
	var entries []Entry
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return entries, nil
}

func validateMetadata(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(metadataSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: metadata is not valid JSON: %v", ErrCorrupt, err)
	}
	if result.Valid() {
		return nil
	}
	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("%w: metadata schema: %s", ErrCorrupt, strings.Join(errs, ", "))
}

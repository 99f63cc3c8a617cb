package store

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"

	"github.com/abhisek/ipquiz/internal/quiz"
)

// FormatVersion is the bank document version written by this build.
// Documents with the same major version can be read.
const FormatVersion = "1.0.0"

//go:embed bank.schema.json
var documentSchemaJSON []byte

//go:embed seed.json
var seedJSON []byte

// Document is the on-disk form of a bank: questions, hints and PIN hash in
// one JSON file. A nil Questions or Hints means the collection was never
// saved.
type Document struct {
	Version   string       `json:"version"`
	Questions quiz.Bank    `json:"questions"`
	Hints     quiz.HintMap `json:"hints"`
	PINHash   string       `json:"pin_hash,omitempty"`
}

var (
	compileOnce    sync.Once
	documentSchema *jsonschema.Schema
	compileErr     error
)

func compiledDocumentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(documentSchemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parse document schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://ipquiz-bank.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		documentSchema, compileErr = c.Compile(url)
	})
	return documentSchema, compileErr
}

// DecodeDocument validates raw against the bank schema and version, then
// decodes it.
func DecodeDocument(raw []byte) (*Document, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	sch, err := compiledDocumentSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, fmt.Errorf("document does not match schema: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeDocument renders doc as indented JSON, stamping the current version.
func EncodeDocument(doc *Document) ([]byte, error) {
	out := *doc
	out.Version = FormatVersion
	return json.MarshalIndent(out, "", "  ")
}

func checkVersion(v string) error {
	sv := "v" + v
	if !semver.IsValid(sv) {
		return fmt.Errorf("invalid document version %q", v)
	}
	if semver.Major(sv) != semver.Major("v"+FormatVersion) {
		return fmt.Errorf("unsupported document version %s (this build reads %s.x)",
			v, semver.Major("v"+FormatVersion))
	}
	return nil
}

// FileStore keeps the bank in a single JSON document.
type FileStore struct {
	mu       sync.Mutex
	path     string
	embedded []byte
}

var _ Repo = (*FileStore)(nil)

// NewFileStore returns a store backed by the document at path. The file is
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Bundled returns a read-only store over the bank compiled into the binary.
func Bundled() *FileStore {
	return &FileStore{embedded: seedJSON}
}

// Path is the document location, empty for the bundled bank.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) readOnly() bool {
	return f.embedded != nil
}

func (f *FileStore) load() (*Document, error) {
	raw := f.embedded
	if raw == nil {
		var err error
		raw, err = os.ReadFile(f.path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.path, err)
		}
	}
	return DecodeDocument(raw)
}

func (f *FileStore) update(mutate func(doc *Document)) error {
	if f.readOnly() {
		return ErrReadOnly
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if errors.Is(err, ErrNotFound) {
		doc = &Document{}
	} else if err != nil {
		return err
	}
	mutate(doc)

	out, err := EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := EnsureDir(f.path); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".ipquiz-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) LoadQuestions(ctx context.Context) (quiz.Bank, error) {
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	if doc.Questions == nil {
		return nil, ErrNotFound
	}
	return doc.Questions, nil
}

func (f *FileStore) SaveQuestions(ctx context.Context, bank quiz.Bank) error {
	if bank == nil {
		bank = quiz.Bank{}
	}
	return f.update(func(doc *Document) { doc.Questions = bank })
}

func (f *FileStore) LoadHints(ctx context.Context) (quiz.HintMap, error) {
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	if doc.Hints == nil {
		return nil, ErrNotFound
	}
	return doc.Hints, nil
}

func (f *FileStore) SaveHints(ctx context.Context, hints quiz.HintMap) error {
	if hints == nil {
		hints = quiz.HintMap{}
	}
	return f.update(func(doc *Document) { doc.Hints = hints })
}

func (f *FileStore) LoadPINHash(ctx context.Context) (string, error) {
	doc, err := f.load()
	if err != nil {
		return "", err
	}
	if doc.PINHash == "" {
		return "", ErrNotFound
	}
	return doc.PINHash, nil
}

func (f *FileStore) SavePINHash(ctx context.Context, hash string) error {
	return f.update(func(doc *Document) { doc.PINHash = hash })
}

func (f *FileStore) Close() error { return nil }

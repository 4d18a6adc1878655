package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	folioerrors "github.com/conneroisu/folio/internal/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a supported document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", folioerrors.NewValidationError(folioerrors.ErrCodeUnsupportedType,
			fmt.Sprintf("unsupported content format %q", filepath.Ext(path))).WithPath(path)
	}
}

// Parse decodes and validates a document.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	default:
		return nil, folioerrors.NewValidationError(folioerrors.ErrCodeUnsupportedType,
			fmt.Sprintf("unsupported content format %q", format))
	}
	if err != nil {
		return nil, folioerrors.NewContentError(folioerrors.ErrCodeContentParse,
			fmt.Sprintf("failed to decode %s document", format), err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		code := folioerrors.ErrCodeInvalidPath
		if os.IsNotExist(err) {
			code = folioerrors.ErrCodeFileNotFound
		}
		return nil, folioerrors.WrapIO(err, code, "failed to read content document", path)
	}

	doc, err := Parse(data, format)
	if err != nil {
		return nil, folioerrors.WrapContent(err, folioerrors.ErrCodeContentInvalid, "invalid content document", path)
	}
	return doc, nil
}

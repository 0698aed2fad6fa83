// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ampsave

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const archiveSchemaFile = "schemas/archive.schema.json"

//go:embed schemas/*.json
var schemasFS embed.FS

var errInvalidArchive = errors.New("archive does not match schema")

var archiveSchema = sync.OnceValues(compileArchiveSchema)

// SchemaIssue is a single schema violation.
type SchemaIssue struct {
	Path    string
	Message string
}

// SchemaError lists every violation found in an archive.
type SchemaError struct {
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Path+": "+issue.Message)
	}

	return fmt.Sprintf("%s: %s", errInvalidArchive, strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() error { return errInvalidArchive }

func compileArchiveSchema() (*jsonschema.Schema, error) {
	data, err := schemasFS.ReadFile(archiveSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("read archive schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal archive schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("archive.schema.json", doc); err != nil {
		return nil, fmt.Errorf("add archive schema: %w", err)
	}

	schema, err := c.Compile("archive.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile archive schema: %w", err)
	}

	return schema, nil
}

// Validate checks data against the archive schema. Violations are reported
// as a *SchemaError.
func Validate(data []byte) error {
	schema, err := archiveSchema()
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &SchemaError{Issues: []SchemaIssue{{Path: "/", Message: fmt.Sprintf("invalid JSON: %v", err)}}}
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		return &SchemaError{Issues: collectIssues(ve)}
	}

	return &SchemaError{Issues: []SchemaIssue{{Path: "/", Message: err.Error()}}}
}

func collectIssues(ve *jsonschema.ValidationError) []SchemaIssue {
	if len(ve.Causes) == 0 {
		return []SchemaIssue{{
			Path:    "/" + strings.Join(ve.InstanceLocation, "/"),
			Message: ve.Error(),
		}}
	}

	var issues []SchemaIssue
	for _, cause := range ve.Causes {
		issues = append(issues, collectIssues(cause)...)
	}

	return issues
}

// Package irdoc reads bound IR trees from YAML documents.
//
// A document names every row source with a unique alias; column
// references are written "alias.name". Each alias in the document becomes
// a fresh nodes.Alias, so two documents never share aliases.
//
//	version: "1"
//	projection:
//	  projector: {column: q.name}
//	  source:
//	    select:
//	      alias: q
//	      columns:
//	        - {name: name, expr: {column: u.name}}
//	      from: {table: {name: users, alias: u}}
package irdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/bawdo/relq/nodes"
)

// SupportedVersions is the document version constraint this package reads.
const SupportedVersions = "^1"

// Document is a decoded IR file.
type Document struct {
	Version *semver.Version
	Root    nodes.Expression
	// Aliases maps document alias names to the aliases issued for them.
	Aliases map[string]nodes.Alias
}

// Parse decodes a document from data.
func Parse(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile decodes the document stored at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode reads one document from r. Unknown keys are errors.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw document
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}

	version, err := checkVersion(raw.Version)
	if err != nil {
		return nil, err
	}

	b := newBinder()
	root, err := b.root(&raw)
	if err != nil {
		return nil, err
	}
	return &Document{Version: version, Root: root, Aliases: b.aliases}, nil
}

func checkVersion(v string) (*semver.Version, error) {
	if v == "" {
		return nil, errors.New("missing version")
	}
	version, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("version %q: %w", v, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return nil, err
	}
	if !constraint.Check(version) {
		return nil, fmt.Errorf("unsupported version %s (want %s)", version, SupportedVersions)
	}
	return version, nil
}

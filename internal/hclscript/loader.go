// Package hclscript loads whoosh scripts written in HCL and translates them
// into the format-agnostic script model.
package hclscript

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/whoosh/internal/ctxlog"
	"github.com/specialistvlad/whoosh/internal/fsutil"
	"github.com/specialistvlad/whoosh/internal/script"
	"github.com/spf13/afero"
)

// Loader is the HCL implementation of the script.Loader interface.
type Loader struct {
	fs afero.Fs
}

var _ script.Loader = (*Loader)(nil)

// NewLoader creates a loader that reads script files from fsys.
func NewLoader(fsys afero.Fs) *Loader {
	return &Loader{fs: fsys}
}

// Load reads a single script file, or every .hcl file below a directory in
// lexical order, and concatenates their variables and groups.
func (l *Loader) Load(ctx context.Context, path string) (*script.Script, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	files, err := fsutil.FindFilesByExtension(l.fs, path, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %s", path)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	s := &script.Script{}

	for _, file := range files {
		src, err := afero.ReadFile(l.fs, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read script file %s: %w", file, err)
		}

		hclFile, diags := parser.ParseHCL(src, file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, v := range root.Variables {
			variable, err := translateVariable(ctx, v)
			if err != nil {
				return nil, err
			}
			s.Variables = append(s.Variables, variable)
		}
		for _, g := range root.Groups {
			group, err := translateGroup(ctx, g)
			if err != nil {
				return nil, err
			}
			s.Groups = append(s.Groups, group)
		}
	}

	logger.Debug("HCL loading complete.", "files", len(files), "variables", len(s.Variables), "groups", len(s.Groups))
	return s, nil
}

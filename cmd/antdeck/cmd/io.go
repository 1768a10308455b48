package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/signalsfoundry/antenna-workbench/doc"
	"github.com/signalsfoundry/antenna-workbench/necio"
)

// sourceDocument is a geometry loaded from disk plus the header metadata
// the two on-disk formats carry.
type sourceDocument struct {
	Name     string
	Ground   bool
	Snapshot doc.Snapshot
}

// readDocument loads either format: .json reads as a saved project,
// anything else parses as a NEC deck.
func readDocument(path string) (sourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sourceDocument{}, err
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		proj, err := doc.ReadProject(bytes.NewReader(data))
		if err != nil {
			return sourceDocument{}, err
		}
		return sourceDocument{Name: proj.Name, Snapshot: proj.Snapshot}, nil
	}

	deck, err := necio.Parse(bytes.NewReader(data))
	if err != nil {
		return sourceDocument{}, err
	}
	snap, err := deck.Snapshot()
	if err != nil {
		return sourceDocument{}, err
	}
	src := sourceDocument{Ground: deck.Ground, Snapshot: snap}
	if len(deck.Comments) > 0 {
		src.Name = deck.Comments[0]
	}
	return src, nil
}

// writeOutput renders to the named file, or to stdout when path is
// empty. File writes get a confirmation line so scripted runs can see
// where the output went.
func writeOutput(path string, render func(io.Writer) error) error {
	if path == "" {
		return render(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

package main

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/samcharles93/plyload/pkg/ply"
)

type fileSummary struct {
	Path       string           `json:"path"`
	ID         string           `json:"id"`
	Encoding   string           `json:"encoding"`
	Version    string           `json:"version"`
	DataOffset int64            `json:"data_offset"`
	Comments   []string         `json:"comments,omitempty"`
	ObjInfo    []string         `json:"obj_info,omitempty"`
	Elements   []elementSummary `json:"elements"`
}

type elementSummary struct {
	Name       string            `json:"name"`
	Count      int64             `json:"count"`
	Offset     int64             `json:"offset"`
	Properties []propertySummary `json:"properties"`
}

type propertySummary struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ListType string `json:"list_type,omitempty"`
	Size     int64  `json:"size"`
}

func summarize(path string, f *ply.File) fileSummary {
	s := fileSummary{
		Path:       path,
		ID:         f.ID,
		Encoding:   f.Encoding().String(),
		Version:    f.Version(),
		DataOffset: f.DataOffset(),
		Comments:   f.Comments(),
		ObjInfo:    f.ObjInfo(),
	}
	for _, e := range f.Elements() {
		es := elementSummary{Name: e.Name(), Count: e.Count(), Offset: e.Offset()}
		for _, p := range e.Properties() {
			ps := propertySummary{Name: p.Name(), Type: p.Type().String(), Size: p.Size()}
			if p.IsList() {
				ps.ListType = p.ListType().String()
			}
			es.Properties = append(es.Properties, ps)
		}
		s.Elements = append(s.Elements, es)
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"oddsmap/internal/entity"
)

const currentSchemaVersion = 1

// Meta is the bookkeeping header of a corpus document.
type Meta struct {
	SchemaVersion int    `json:"schema_version"`
	DBVersion     string `json:"db_version,omitempty"`
	NextID        int64  `json:"next_id"`
}

type document struct {
	Meta    Meta
	Records map[int64]entity.Record
}

type wireDocument struct {
	Meta *Meta                      `json:"meta,omitempty"`
	Data map[string]json.RawMessage `json:"data"`
}

// decodeDocument accepts the wrapped layout and the older flat {id: record}
// layout. Keys that are not integers are reported as errors.
func decodeDocument(d entity.Domain, data []byte) (*document, error) {
	doc := &document{Records: make(map[int64]entity.Record)}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		doc.repair(d)
		return doc, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}

	records := probe
	if _, wrapped := probe["data"]; wrapped {
		var wire wireDocument
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("parse corpus: %w", err)
		}
		if wire.Meta != nil {
			doc.Meta = *wire.Meta
		}
		records = wire.Data
	} else {
		delete(records, "meta")
	}

	for key, raw := range records {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse corpus: record key %q is not an integer id", key)
		}
		var rec entity.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("parse corpus record %d: %w", id, err)
		}
		rec.ID = id
		doc.Records[id] = rec
	}
	doc.repair(d)
	return doc, nil
}

// repair fills in missing meta and moves next_id past every existing id.
func (doc *document) repair(d entity.Domain) bool {
	changed := false
	if doc.Meta.SchemaVersion == 0 {
		doc.Meta.SchemaVersion = currentSchemaVersion
		changed = true
	}
	if doc.Meta.DBVersion == "" {
		doc.Meta.DBVersion = d.String() + "-init"
		changed = true
	}
	if floor := doc.maxID() + 1; doc.Meta.NextID < floor {
		doc.Meta.NextID = floor
		changed = true
	}
	return changed
}

func (doc *document) maxID() int64 {
	var highest int64
	for id := range doc.Records {
		if id > highest {
			highest = id
		}
	}
	return highest
}

func (doc *document) sorted() []entity.Record {
	out := make([]entity.Record, 0, len(doc.Records))
	for _, rec := range doc.Records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (doc *document) encode() ([]byte, error) {
	meta := doc.Meta
	wire := wireDocument{Meta: &meta, Data: make(map[string]json.RawMessage, len(doc.Records))}
	for id, rec := range doc.Records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", id, err)
		}
		wire.Data[strconv.FormatInt(id, 10)] = raw
	}
	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode corpus: %w", err)
	}
	return append(data, '\n'), nil
}

func (doc *document) clone() *document {
	out := &document{Meta: doc.Meta, Records: make(map[int64]entity.Record, len(doc.Records))}
	for id, rec := range doc.Records {
		out.Records[id] = rec
	}
	return out
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/hydrive/core"
)

// formatVersion prefixes every stored blob.
const formatVersion uint64 = 1

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	size := varint.Uint64.Size(formatVersion) +
		ord.String.Size(doc.ID) +
		ord.String.Size(doc.FileName) +
		ord.String.Size(string(doc.Vehicle)) +
		sizeSections(doc.Sections)

	w := &writer{bs: make([]byte, size)}
	w.uint64(formatVersion)
	w.string(doc.ID)
	w.string(doc.FileName)
	w.string(string(doc.Vehicle))
	w.sections(doc.Sections)
	return w.bs[:size]
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	r := &reader{bs: data}
	if err := r.version(); err != nil {
		return nil, err
	}
	doc := &core.Document{
		ID:       r.string(),
		FileName: r.string(),
		Vehicle:  core.Vehicle(r.string()),
	}
	doc.Sections = r.sections()
	if r.err != nil {
		return nil, r.err
	}
	if doc.Sections == nil {
		doc.Sections = []core.Section{}
	}
	return doc, nil
}

// MarshalEmbeddingSet serializes an EmbeddingSet to bytes.
func MarshalEmbeddingSet(set *core.EmbeddingSet) []byte {
	size := varint.Uint64.Size(formatVersion) +
		ord.String.Size(set.DocumentID) +
		ord.String.Size(set.Model) +
		varint.Int64.Size(int64(set.Dimension)) +
		varint.Int64.Size(set.CreatedAt.UnixMicro()) +
		varint.Uint64.Size(uint64(len(set.Sections)))
	for i := range set.Sections {
		size += sizeMeta(set.Sections[i])
	}
	size += varint.Uint64.Size(uint64(len(set.Vectors)))
	for _, v := range set.Vectors {
		size += sizeVector(v)
	}

	w := &writer{bs: make([]byte, size)}
	w.uint64(formatVersion)
	w.string(set.DocumentID)
	w.string(set.Model)
	w.int64(int64(set.Dimension))
	w.int64(set.CreatedAt.UnixMicro())
	w.uint64(uint64(len(set.Sections)))
	for i := range set.Sections {
		w.meta(set.Sections[i])
	}
	w.uint64(uint64(len(set.Vectors)))
	for _, v := range set.Vectors {
		w.vector(v)
	}
	return w.bs[:size]
}

// UnmarshalEmbeddingSet deserializes an EmbeddingSet from bytes.
func UnmarshalEmbeddingSet(data []byte) (*core.EmbeddingSet, error) {
	r := &reader{bs: data}
	if err := r.version(); err != nil {
		return nil, err
	}
	set := &core.EmbeddingSet{
		DocumentID: r.string(),
		Model:      r.string(),
		Dimension:  int(r.int64()),
		CreatedAt:  time.UnixMicro(r.int64()).UTC(),
	}

	n := r.count()
	set.Sections = make([]core.SectionMeta, n)
	for i := range set.Sections {
		set.Sections[i] = r.meta()
	}
	n = r.count()
	set.Vectors = make([][]float32, n)
	for i := range set.Vectors {
		set.Vectors[i] = r.vector()
	}
	if r.err != nil {
		return nil, r.err
	}
	return set, nil
}

func sizeSections(sections []core.Section) int {
	size := varint.Uint64.Size(uint64(len(sections)))
	for i := range sections {
		s := &sections[i]
		size += ord.String.Size(s.Source) +
			ord.String.Size(s.SectionNumber) +
			ord.String.Size(s.Title) +
			varint.Int64.Size(int64(s.Pages.Start)) +
			varint.Int64.Size(int64(s.Pages.End)) +
			ord.String.Size(s.Content) +
			varint.Uint64.Size(uint64(len(s.Keywords)))
		for _, k := range s.Keywords {
			size += ord.String.Size(k)
		}
		size += sizeSections(s.Subsections)
	}
	return size
}

func sizeMeta(m core.SectionMeta) int {
	return ord.String.Size(m.SectionNumber) +
		ord.String.Size(m.Title) +
		varint.Uint64.Size(uint64(m.Fingerprint))
}

func sizeVector(v []float32) int {
	size := varint.Uint64.Size(uint64(len(v)))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

// writer marshals values into a presized buffer.
type writer struct {
	bs  []byte
	off int
}

func (w *writer) uint64(v uint64) { w.off += varint.Uint64.Marshal(v, w.bs[w.off:]) }
func (w *writer) int64(v int64)   { w.off += varint.Int64.Marshal(v, w.bs[w.off:]) }
func (w *writer) string(v string) { w.off += ord.String.Marshal(v, w.bs[w.off:]) }

func (w *writer) sections(sections []core.Section) {
	w.uint64(uint64(len(sections)))
	for i := range sections {
		s := &sections[i]
		w.string(s.Source)
		w.string(s.SectionNumber)
		w.string(s.Title)
		w.int64(int64(s.Pages.Start))
		w.int64(int64(s.Pages.End))
		w.string(s.Content)
		w.uint64(uint64(len(s.Keywords)))
		for _, k := range s.Keywords {
			w.string(k)
		}
		w.sections(s.Subsections)
	}
}

func (w *writer) meta(m core.SectionMeta) {
	w.string(m.SectionNumber)
	w.string(m.Title)
	w.uint64(uint64(m.Fingerprint))
}

func (w *writer) vector(v []float32) {
	w.uint64(uint64(len(v)))
	for _, f := range v {
		w.off += raw.Float32.Marshal(f, w.bs[w.off:])
	}
}

// reader unmarshals values in order, recording the first error.
// Once an error is set every subsequent read returns a zero value.
type reader struct {
	bs  []byte
	off int
	err error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
}

func (r *reader) version() error {
	v := r.uint64()
	if r.err != nil {
		return r.err
	}
	if v != formatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	return nil
}

func (r *reader) uint64() uint64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(r.bs[r.off:])
	if err != nil {
		r.fail(err)
		return 0
	}
	r.off += n
	return v
}

func (r *reader) int64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.bs[r.off:])
	if err != nil {
		r.fail(err)
		return 0
	}
	r.off += n
	return v
}

func (r *reader) string() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs[r.off:])
	if err != nil {
		r.fail(err)
		return ""
	}
	r.off += n
	return v
}

func (r *reader) float32() float32 {
	if r.err != nil {
		return 0
	}
	v, n, err := raw.Float32.Unmarshal(r.bs[r.off:])
	if err != nil {
		r.fail(err)
		return 0
	}
	r.off += n
	return v
}

// count reads a collection length, rejecting lengths that cannot fit in the
// remaining input since every element occupies at least one byte.
func (r *reader) count() int {
	n := r.uint64()
	if r.err != nil {
		return 0
	}
	if n > uint64(len(r.bs)-r.off) {
		r.fail(ErrTruncatedData)
		return 0
	}
	return int(n)
}

func (r *reader) sections() []core.Section {
	n := r.count()
	if n == 0 {
		return nil
	}
	sections := make([]core.Section, n)
	for i := range sections {
		s := &sections[i]
		s.Source = r.string()
		s.SectionNumber = r.string()
		s.Title = r.string()
		s.Pages = core.PageRange{Start: int(r.int64()), End: int(r.int64())}
		s.Content = r.string()
		if k := r.count(); k > 0 {
			s.Keywords = make([]string, k)
			for j := range s.Keywords {
				s.Keywords[j] = r.string()
			}
		}
		s.Subsections = r.sections()
		if r.err != nil {
			return nil
		}
	}
	return sections
}

func (r *reader) meta() core.SectionMeta {
	return core.SectionMeta{
		SectionNumber: r.string(),
		Title:         r.string(),
		Fingerprint:   core.ID(r.uint64()),
	}
}

func (r *reader) vector() []float32 {
	n := r.count()
	if n == 0 {
		return nil
	}
	v := make([]float32, n)
	for i := range v {
		v[i] = r.float32()
	}
	return v
}

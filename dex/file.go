// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dex

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/saferwall/apktests/internal/log"
)

// MaxDefaultClassesCount bounds the number of ClassDefs this parser
// will walk by default, guarding against a pathological class_defs_size
// in a hostile input.
const MaxDefaultClassesCount = 1 << 20

// Options configures parsing. The zero value is usable; Open/OpenBytes
// fill in defaults the same way pe.New defaults its Options.
type Options struct {
	// Fast skips decoding annotation directories; only Q1 (inheritance)
	// results will be meaningful when set.
	Fast bool

	// MaxClassesCount caps how many ClassDefs are walked by the
	// queries. Zero means MaxDefaultClassesCount.
	MaxClassesCount uint32

	// Logger receives structural warnings encountered during parsing.
	Logger log.Logger
}

// File is a parsed DEX file: an immutable buffer plus its fully
// materialized header and id tables. Derived records (ClassDefData,
// AnnotationsDirectory, ...) are decoded lazily by the queries in
// queries.go from their declared offsets.
type File struct {
	Header  Header
	Strings []StringID
	Types   []TypeID
	Protos  []ProtoID
	Fields  []FieldID
	Methods []MethodID
	Classes []ClassDef

	data   mmap.MMap
	mapped bool
	f      *os.File
	opts   *Options
	logger *log.Helper

	descriptorCache map[uint32]string
}

func newOptions(opts *Options) *Options {
	o := &Options{}
	if opts != nil {
		*o = *opts
	}
	if o.MaxClassesCount == 0 {
		o.MaxClassesCount = MaxDefaultClassesCount
	}
	return o
}

func newLogger(opts *Options) *log.Helper {
	if opts.Logger != nil {
		return log.NewHelper(opts.Logger)
	}
	logger := log.NewStdLogger(os.Stdout)
	return log.NewHelper(log.NewFilter(logger, log.FilterLevel(log.LevelError)))
}

// Open memory-maps the DEX file at path and parses its header and id
// tables eagerly.
func Open(path string, opts *Options) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file := &File{
		data:            data,
		mapped:          true,
		f:               f,
		opts:            newOptions(opts),
		descriptorCache: make(map[uint32]string),
	}
	file.logger = newLogger(file.opts)

	if err := file.Parse(); err != nil {
		file.Close()
		return nil, err
	}
	return file, nil
}

// OpenBytes parses an in-memory DEX buffer, e.g. one already extracted
// from an APK's ZIP central directory. The buffer is retained without
// copying; callers must not mutate it afterward.
func OpenBytes(data []byte, opts *Options) (*File, error) {
	file := &File{
		data:            data,
		opts:            newOptions(opts),
		descriptorCache: make(map[uint32]string),
	}
	file.logger = newLogger(file.opts)

	if err := file.Parse(); err != nil {
		return nil, err
	}
	return file, nil
}

// Close releases the memory-mapped buffer and the underlying file
// handle, if any (OpenBytes-backed files have neither to release).
func (d *File) Close() error {
	if d.mapped {
		if err := d.data.Unmap(); err != nil {
			return err
		}
	}
	if d.f != nil {
		return d.f.Close()
	}
	return nil
}

// Parse runs the full header-and-tables pipeline described in §4.3:
// magic/endian validation, then the six id tables in declared order.
// TypeIDs and StringIDs are loaded first among consumers that need
// descriptor resolution since everything downstream resolves
// descriptors through them.
func (d *File) Parse() error {
	r := newReader(d.data)

	h, err := decodeHeader(r)
	if err != nil {
		return err
	}
	d.Header = h

	r.seek(h.StringIDs.offset)
	d.Strings, err = decodeStringIDs(r, int(h.StringIDs.size))
	if err != nil {
		return err
	}

	r.seek(h.TypeIDs.offset)
	d.Types, err = decodeTypeIDs(r, int(h.TypeIDs.size))
	if err != nil {
		return err
	}

	r.seek(h.ProtoIDs.offset)
	d.Protos, err = decodeProtoIDs(r, int(h.ProtoIDs.size))
	if err != nil {
		return err
	}

	r.seek(h.FieldIDs.offset)
	d.Fields, err = decodeFieldIDs(r, int(h.FieldIDs.size))
	if err != nil {
		return err
	}

	r.seek(h.MethodIDs.offset)
	d.Methods, err = decodeMethodIDs(r, int(h.MethodIDs.size))
	if err != nil {
		return err
	}

	if h.ClassDefs.size > d.opts.MaxClassesCount {
		d.logger.Warnf("class_defs_size %d exceeds MaxClassesCount %d, truncating",
			h.ClassDefs.size, d.opts.MaxClassesCount)
		h.ClassDefs.size = d.opts.MaxClassesCount
	}
	r.seek(h.ClassDefs.offset)
	d.Classes, err = decodeClassDefs(r, int(h.ClassDefs.size))
	if err != nil {
		return err
	}

	return nil
}

// reader builds a fresh cursor over this file's buffer. Offset-following
// decoders (queries.go, resolver.go) each get their own reader rather
// than sharing File's mutable cursor, since a File has none: following
// the design note in spec.md §9, random-access decoding over an
// immutable buffer removes the save/restore discipline entirely.
func (d *File) reader() *reader {
	return newReader(d.data)
}

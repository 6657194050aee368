// Copyright (C) 2023 Figware, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// figdump decodes a fig design file (or a raw kiwi
// schema+data chunk pair) and writes the document tree to
// stdout as JSON or msgpack.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/figware/officebin/figfile"
	"github.com/figware/officebin/kiwi"
)

var (
	dashv      bool
	dashfmt    string
	dashroot   string
	dashschema bool
	dashraw    bool
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
	flag.StringVar(&dashfmt, "fmt", "json", "output format (json or msgpack)")
	flag.StringVar(&dashroot, "root", figfile.DefaultRootType, "root message definition name")
	flag.BoolVar(&dashschema, "schema", false, "print the schema instead of the document tree")
	flag.BoolVar(&dashraw, "raw", false, "input is a raw generic-dialect chunk pair, not a fig container")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func main() {
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: figdump [options] file")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	run := uuid.New()
	logf := func(f string, args ...interface{}) {
		if dashv {
			log.Printf("figdump[%s]: "+f, append([]interface{}{run}, args...)...)
		}
	}
	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		exitf("figdump: %s\n", err)
	}
	logf("read %d bytes from %s", len(data), flag.Arg(0))

	var schema *kiwi.Schema
	var root kiwi.Value
	if dashraw {
		schemaChunk, dataChunk, err := kiwi.SplitChunks(data)
		if err != nil {
			exitf("figdump: %s\n", err)
		}
		schema, err = kiwi.DecodeSchema(schemaChunk)
		if err != nil {
			exitf("figdump: %s\n", err)
		}
		root, err = kiwi.DecodeMessage(schema, dataChunk, dashroot)
		if err != nil {
			exitf("figdump: %s\n", err)
		}
		logf("decoded raw chunks: %d definitions, fingerprint %016x",
			len(schema.Defs), kiwi.Fingerprint(schemaChunk))
	} else {
		f, err := figfile.ParseRoot(data, dashroot)
		if err != nil {
			exitf("figdump: %s\n", err)
		}
		schema, root = f.Schema, f.Root
		logf("fig version %c: %d definitions, schema fingerprint %016x",
			f.Header.Version, len(schema.Defs), f.SchemaFingerprint)
	}

	if dashschema {
		fmt.Print(schema.String())
		return
	}
	switch dashfmt {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(root.Interface()); err != nil {
			exitf("figdump: encoding json: %s\n", err)
		}
	case "msgpack":
		out, err := msgpack.Marshal(root.Interface())
		if err != nil {
			exitf("figdump: encoding msgpack: %s\n", err)
		}
		if _, err := os.Stdout.Write(out); err != nil {
			exitf("figdump: %s\n", err)
		}
	default:
		exitf("figdump: unknown output format %q\n", dashfmt)
	}
}

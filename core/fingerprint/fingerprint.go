// Package fingerprint computes content hashes of tables and grouped
// results over a canonical byte encoding. Two inputs with the same
// schema and values fingerprint identically regardless of how they
// were loaded, which makes the digests usable as cache keys and
// bundle manifest entries.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/TallyBook/core/groupset"
	"github.com/FocuswithJustin/TallyBook/core/table"
	"github.com/FocuswithJustin/TallyBook/core/tally"
)

// Digest carries both hashes of one canonical encoding. BLAKE3 is the
// primary identity; SHA-256 rides along for external tooling.
type Digest struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

// Short returns a truncated BLAKE3 prefix for logs and cache keys.
func (d Digest) Short() string {
	if len(d.BLAKE3) < 12 {
		return d.BLAKE3
	}
	return d.BLAKE3[:12]
}

func (d Digest) String() string { return "blake3:" + d.BLAKE3 }

// IsZero reports whether the digest is unset.
func (d Digest) IsZero() bool { return d.BLAKE3 == "" && d.SHA256 == "" }

// Bytes fingerprints raw data.
func Bytes(data []byte) Digest {
	sha := sha256.Sum256(data)
	b3 := blake3.Sum256(data)
	return Digest{
		SHA256: hex.EncodeToString(sha[:]),
		BLAKE3: hex.EncodeToString(b3[:]),
	}
}

// Table fingerprints a table's schema and rows.
func Table(t *table.Table) Digest {
	var buf bytes.Buffer
	writeString(&buf, "table")
	encodeSchema(&buf, t.Schema())
	writeInt(&buf, int64(t.Len()))
	for _, row := range t.Rows() {
		for _, v := range row {
			writeString(&buf, v.GroupKey())
		}
	}
	return Bytes(buf.Bytes())
}

// Result fingerprints a grouped result: the grouping specification,
// the aggregate columns, and every row with its mask.
func Result(r *tally.Result) Digest {
	var buf bytes.Buffer
	writeString(&buf, "result")
	writeString(&buf, r.Spec.String())
	encodeAggs(&buf, r.Aggregates)
	writeInt(&buf, int64(len(r.Rows)))
	for _, row := range r.Rows {
		writeInt(&buf, int64(row.Mask))
		for _, v := range row.Groups {
			writeString(&buf, v.GroupKey())
		}
		for _, v := range row.Aggs {
			writeString(&buf, v.GroupKey())
		}
	}
	return Bytes(buf.Bytes())
}

// Query fingerprints a request before it runs: the input table, the
// grouping specification, and the aggregate list. The result cache is
// keyed on this.
func Query(t *table.Table, spec *groupset.Spec, aggs []tally.AggSpec) Digest {
	var buf bytes.Buffer
	writeString(&buf, "query")
	writeString(&buf, Table(t).BLAKE3)
	writeString(&buf, spec.String())
	encodeAggs(&buf, aggs)
	return Bytes(buf.Bytes())
}

func encodeSchema(buf *bytes.Buffer, schema table.Schema) {
	writeInt(buf, int64(len(schema)))
	for _, col := range schema {
		writeString(buf, col.Name)
		writeInt(buf, int64(col.Kind))
	}
}

func encodeAggs(buf *bytes.Buffer, aggs []tally.AggSpec) {
	writeInt(buf, int64(len(aggs)))
	for _, a := range aggs {
		writeString(buf, a.Func)
		writeString(buf, a.Col)
		writeString(buf, a.OutputName())
		if a.Distinct {
			writeString(buf, "distinct")
		}
		if a.HasSep {
			writeString(buf, "sep")
			writeString(buf, a.Sep)
		}
	}
}

// writeString emits a length-prefixed string so encodings never
// collide across field boundaries.
func writeString(buf *bytes.Buffer, s string) {
	writeInt(buf, int64(len(s)))
	buf.WriteString(s)
}

func writeInt(buf *bytes.Buffer, n int64) {
	var tmp [binary.MaxVarintLen64]byte
	buf.Write(tmp[:binary.PutVarint(tmp[:], n)])
}

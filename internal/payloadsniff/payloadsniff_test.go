// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package payloadsniff

import (
	"bytes"
	"compress/zlib"
	"testing"
)

func TestSniffZlib(t *testing.T) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write([]byte("hello, wz payload")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if got := Sniff(buf.Bytes()); got != KindZlib {
		t.Errorf("Sniff = %v, want KindZlib", got)
	}
}

func TestSniffEmpty(t *testing.T) {
	if got := Sniff(nil); got != KindEmpty {
		t.Errorf("Sniff(nil) = %v, want KindEmpty", got)
	}
}

func TestSniffUnknown(t *testing.T) {
	if got := Sniff([]byte("not a zlib stream at all")); got != KindUnknown {
		t.Errorf("Sniff = %v, want KindUnknown", got)
	}
}

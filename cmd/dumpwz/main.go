// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// dumpwz opens a wz archive given on the command line and prints its
// tree, one node per line.
package main

import (
	"fmt"
	"os"

	"github.com/go-wz/wzfs/internal/payloadsniff"
	"github.com/go-wz/wzfs/wz"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s archive.wz\n", os.Args[0])
		os.Exit(1)
	}

	arc, err := wz.Open(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer arc.Close()

	fmt.Printf("version=%d region=%s\n", arc.Version(), arc.Region())
	dumpDir(arc.Root(), "")
}

func dumpDir(d *wz.Directory, prefix string) {
	for _, n := range d.Nodes() {
		p := prefix + "/" + n.Name()
		if n.IsDir() {
			fmt.Printf("%s/\n", p)
			sub, err := n.Dir()
			if err != nil {
				fmt.Printf("    dump error: %s\n", err)
				continue
			}
			dumpDir(sub, p)
			continue
		}

		kind := payloadsniff.KindUnknown
		if peek, err := n.Payload(64); err == nil {
			kind = payloadsniff.Sniff(peek)
		}
		fmt.Printf("%s size=%d check=%d var=%v payload=%s\n", p, n.Size(), n.Check(), n.VarKind(), kind)
	}
}

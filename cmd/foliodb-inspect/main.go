// foliodb-inspect dumps the raw key space of a store directory for offline
// debugging. Run it against a stopped server's store path.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"foliodb/pkg/kv"
	"foliodb/pkg/logger"
	"foliodb/pkg/store"
)

func main() {
	var (
		path    string
		filter  string
		reindex bool
	)
	flag.StringVar(&path, "store", "", "store path to inspect")
	flag.StringVar(&filter, "filter", "", "only show keys containing this substring")
	flag.BoolVar(&reindex, "rebuild-indexes", false, "rebuild secondary indexes from primary records (run after a restore)")
	flag.Parse()
	if path == "" {
		fmt.Fprintln(os.Stderr, "--store required")
		os.Exit(2)
	}
	logger.Init()

	p, err := kv.OpenPebble(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open failed: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	if reindex {
		if err := store.New(p).RebuildIndexes(); err != nil {
			fmt.Fprintf(os.Stderr, "reindex failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "secondary indexes rebuilt")
		return
	}

	keys, err := p.DumpKeys(filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dump failed: %v\n", err)
		os.Exit(1)
	}
	var total uint64
	for _, k := range keys {
		fmt.Println(k)
		total += uint64(len(k))
	}
	fmt.Fprintf(os.Stderr, "%s keys, %s of key material\n",
		humanize.Comma(int64(len(keys))), humanize.Bytes(total))
}

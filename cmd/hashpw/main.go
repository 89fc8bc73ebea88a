// Command hashpw prints a bcrypt hash for ADMIN_PASSWORD_HASH.
//
//	hashpw -cost 12 'correct horse battery staple'
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/iliyamo/hall-scheme-editor/internal/utils"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hashpw [-cost n] <password>")
		os.Exit(2)
	}
	hash, err := utils.HashPassword(flag.Arg(0), *cost)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(hash)
}

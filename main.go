// Public domain.

package main

import "github.com/seismotools/gmcoll/internal/gcprog"

func main() {
	gcprog.Main()
}

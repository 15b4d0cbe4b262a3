// Command tlgen compiles TL schemas and RPC error tables into Go source.
package main

import "github.com/danmuck/tlgen/internal/logging"

func main() {
	logging.ConfigureRuntime()
	Execute()
}

// Command bookrag is a terminal client for the BookRAG document chat service.
package main

import "github.com/diogo/bookrag/internal/commands"

func main() {
	commands.Execute()
}

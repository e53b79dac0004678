// Package engines re-exports the vector store constructors so callers can
// pick a backend without importing each engine package.
package engines

import (
	"github.com/quarkbyte/finagent/vectordb/engines/chromem"
	"github.com/quarkbyte/finagent/vectordb/engines/memory"
	"github.com/quarkbyte/finagent/vectordb/engines/milvus"
)

var (
	FromChromem = chromem.New
	FromMemory  = memory.New
	FromMilvus  = milvus.New
)

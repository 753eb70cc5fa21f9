package types

// ParserType identifies the table-construction strategy used to build an
// LRParseTable.
type ParserType string

const (
	ParserSLR1  ParserType = "SLR(1)"
	ParserCLR1  ParserType = "CLR(1)"
	ParserLALR1 ParserType = "LALR(1)"
)

func (pt ParserType) String() string {
	return string(pt)
}

package service

// Sheet is one named worksheet; each row is a list of cell values
// (string, float64, int). Numeric Go values must land as numeric cells.
type Sheet struct {
	Name string
	Rows [][]any
}

// WorkbookWriter serialises sheets into a spreadsheet file, in order.
type WorkbookWriter interface {
	WriteWorkbook(sheets []Sheet) ([]byte, error)
}

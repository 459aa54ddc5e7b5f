package excel

// RawData is a file as read: trimmed headers and string rows padded to the
// header width.
type RawData struct {
	Headers []string
	Rows    [][]string
}

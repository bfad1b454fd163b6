// Package compressor shrinks dense two-dimensional tables while keeping lookups constant-time.
package compressor

import (
	"encoding/binary"
	"fmt"
	"sort"
)

const (
	// LevelNone keeps a table dense.
	LevelNone = 0

	// LevelUniqueRows stores each distinct row once.
	LevelUniqueRows = 1

	// LevelRowDisplacement stores each distinct row once and overlaps the distinct rows.
	LevelRowDisplacement = 2

	LevelMin = LevelNone
	LevelMax = LevelRowDisplacement
)

// DenseTable is a row-major table.
type DenseTable struct {
	entries  []int
	rowCount int
	colCount int
}

func NewDenseTable(entries []int, colCount int) (*DenseTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("entries is empty")
	}
	if colCount <= 0 {
		return nil, fmt.Errorf("colCount must be >=1")
	}
	if len(entries)%colCount != 0 {
		return nil, fmt.Errorf("entries length or column count are incorrect; entries length: %v, column count: %v", len(entries), colCount)
	}

	return &DenseTable{
		entries:  entries,
		rowCount: len(entries) / colCount,
		colCount: colCount,
	}, nil
}

func (tab *DenseTable) Lookup(row, col int) (int, error) {
	if row < 0 || row >= tab.rowCount || col < 0 || col >= tab.colCount {
		return 0, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	return tab.entries[row*tab.colCount+col], nil
}

func (tab *DenseTable) OriginalTableSize() (int, int) {
	return tab.rowCount, tab.colCount
}

type Compressor interface {
	Compress(orig *DenseTable) error
	Lookup(row, col int) (int, error)
	OriginalTableSize() (int, int)

	// Size returns the number of ints the compressed form holds.
	Size() int
}

var (
	_ Compressor = &UniqueEntriesTable{}
	_ Compressor = &RowDisplacementTable{}
)

// UniqueEntriesTable stores each distinct row once. RowNums maps an original row to its distinct row.
type UniqueEntriesTable struct {
	UniqueEntries    []int
	RowNums          []int
	OriginalRowCount int
	OriginalColCount int
}

func NewUniqueEntriesTable() *UniqueEntriesTable {
	return &UniqueEntriesTable{}
}

func (tab *UniqueEntriesTable) Lookup(row, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return 0, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	return tab.UniqueEntries[tab.RowNums[row]*tab.OriginalColCount+col], nil
}

func (tab *UniqueEntriesTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

func (tab *UniqueEntriesTable) Size() int {
	return len(tab.UniqueEntries) + len(tab.RowNums)
}

func (tab *UniqueEntriesTable) Compress(orig *DenseTable) error {
	var uniqueEntries []int
	rowNums := make([]int, orig.rowCount)
	key2RowNum := map[string]int{}
	for row := 0; row < orig.rowCount; row++ {
		start := row * orig.colCount
		entries := orig.entries[start : start+orig.colCount]
		key := rowKey(entries)
		rowNum, ok := key2RowNum[key]
		if !ok {
			rowNum = len(key2RowNum)
			key2RowNum[key] = rowNum
			uniqueEntries = append(uniqueEntries, entries...)
		}
		rowNums[row] = rowNum
	}

	tab.UniqueEntries = uniqueEntries
	tab.RowNums = rowNums
	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount

	return nil
}

// rowKey encodes a row with signed varints, so negative entries such as the dead state are
// encoded without loss.
func rowKey(entries []int) string {
	buf := make([]byte, 0, len(entries)*2)
	for _, e := range entries {
		buf = binary.AppendVarint(buf, int64(e))
	}
	return string(buf)
}

// ForbiddenValue marks a slot of Bounds that no row owns.
const ForbiddenValue = -1

// RowDisplacementTable overlaps rows so that the non-empty entries of one row fill the empty
// entries of others. The entry (row, col) lives at RowDisplacement[row]+col when Bounds there
// holds row; otherwise the entry is EmptyValue.
type RowDisplacementTable struct {
	OriginalRowCount int
	OriginalColCount int
	EmptyValue       int
	Entries          []int
	Bounds           []int
	RowDisplacement  []int
}

func NewRowDisplacementTable(emptyValue int) *RowDisplacementTable {
	return &RowDisplacementTable{
		EmptyValue: emptyValue,
	}
}

func (tab *RowDisplacementTable) Lookup(row int, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return tab.EmptyValue, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	i := tab.RowDisplacement[row] + col
	if i >= len(tab.Bounds) || tab.Bounds[i] != row {
		return tab.EmptyValue, nil
	}
	return tab.Entries[i], nil
}

func (tab *RowDisplacementTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

func (tab *RowDisplacementTable) Size() int {
	return len(tab.Entries) + len(tab.Bounds) + len(tab.RowDisplacement)
}

type rowInfo struct {
	rowNum      int
	nonEmptyCol []int
}

// Compress places rows first-fit, densest row first.
func (tab *RowDisplacementTable) Compress(orig *DenseTable) error {
	rows := make([]rowInfo, orig.rowCount)
	for row := 0; row < orig.rowCount; row++ {
		rows[row].rowNum = row
		for col := 0; col < orig.colCount; col++ {
			if orig.entries[row*orig.colCount+col] != tab.EmptyValue {
				rows[row].nonEmptyCol = append(rows[row].nonEmptyCol, col)
			}
		}
	}
	sort.SliceStable(rows, func(i int, j int) bool {
		return len(rows[i].nonEmptyCol) > len(rows[j].nonEmptyCol)
	})

	// A row is placed at a displacement no one has used yet, so that two empty rows never share
	// the same slots, and every row fits within len(orig.entries) slots.
	entries := make([]int, len(orig.entries))
	bounds := make([]int, len(orig.entries))
	for i := range entries {
		entries[i] = tab.EmptyValue
		bounds[i] = ForbiddenValue
	}
	rowDisplacement := make([]int, orig.rowCount)
	bottom := 0
	next := 0
	for _, r := range rows {
		if len(r.nonEmptyCol) == 0 {
			continue
		}
		d := next
		for !fits(bounds, d, r.nonEmptyCol) {
			d++
		}
		rowDisplacement[r.rowNum] = d
		for _, col := range r.nonEmptyCol {
			entries[d+col] = orig.entries[r.rowNum*orig.colCount+col]
			bounds[d+col] = r.rowNum
		}
		if d+orig.colCount > bottom {
			bottom = d + orig.colCount
		}
		next = d + 1
	}

	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount
	tab.Entries = entries[:bottom]
	tab.Bounds = bounds[:bottom]
	tab.RowDisplacement = rowDisplacement

	return nil
}

func fits(bounds []int, d int, cols []int) bool {
	for _, col := range cols {
		if bounds[d+col] != ForbiddenValue {
			return false
		}
	}
	return true
}

// Compress compresses a dense table at a level. At LevelNone it returns nil.
func Compress(orig *DenseTable, level int, emptyValue int) (*UniqueEntriesTable, *RowDisplacementTable, error) {
	if level < LevelMin || level > LevelMax {
		return nil, nil, fmt.Errorf("a compression level must be between %v and %v: %v", LevelMin, LevelMax, level)
	}
	if level == LevelNone {
		return nil, nil, nil
	}

	ueTab := NewUniqueEntriesTable()
	if err := ueTab.Compress(orig); err != nil {
		return nil, nil, err
	}
	if level == LevelUniqueRows {
		return ueTab, nil, nil
	}

	unique, err := NewDenseTable(ueTab.UniqueEntries, ueTab.OriginalColCount)
	if err != nil {
		return nil, nil, err
	}
	rdTab := NewRowDisplacementTable(emptyValue)
	if err := rdTab.Compress(unique); err != nil {
		return nil, nil, err
	}
	return ueTab, rdTab, nil
}

package bmf

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Index is the read-mostly in-memory Business Master File. Loads are rare
// (a periodic refresh from a new extract); queries are frequent and
// concurrent, so reads take the shared lock and a refresh takes the
// exclusive one.
type Index struct {
	mu sync.RWMutex

	all []Organization

	byEIN   map[string]int   // EIN -> index into all
	byState map[string][]int // state -> indexes into all, not sorted
	byNTEE  map[string][]int // full NTEE code -> indexes into all
}

// NewIndex returns an empty index. Load or Refresh populates it.
func NewIndex() *Index {
	return &Index{
		byEIN:   make(map[string]int),
		byState: make(map[string][]int),
		byNTEE:  make(map[string][]int),
	}
}

// expected BMF CSV header columns, in the stable order spec.md §5 names as
// the ingest contract. A header missing any of these fails the load rather
// than silently ingesting a malformed extract.
var bmfColumns = []string{"EIN", "NAME", "STATE", "NTEE_CD", "REVENUE_AMT", "ASSET_AMT", "FOUNDATION"}

// LoadFile reads a BMF CSV extract and replaces the index contents under the
// exclusive lock. The old index contents remain queryable by any reader that
// is mid-query when the lock is acquired — reads simply block, not observe
// partial state.
func (idx *Index) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open BMF extract %s: %w", path, err)
	}
	defer f.Close()
	return idx.Load(f)
}

// Load parses r as a BMF CSV extract and replaces the index contents.
func (idx *Index) Load(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read BMF header: %w", err)
	}
	colIndex, err := resolveColumns(header)
	if err != nil {
		return err
	}

	var records []Organization
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read BMF row: %w", err)
		}

		org, err := parseRow(row, colIndex)
		if err != nil {
			// A single malformed row does not abort the whole ingest; it is
			// simply excluded from the index.
			continue
		}
		records = append(records, org)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.all = records
	idx.byEIN = make(map[string]int, len(records))
	idx.byState = make(map[string][]int)
	idx.byNTEE = make(map[string][]int)

	for i, org := range records {
		idx.byEIN[org.EIN] = i
		idx.byState[org.State] = append(idx.byState[org.State], i)
		idx.byNTEE[org.NTEECode] = append(idx.byNTEE[org.NTEECode], i)
	}

	return nil
}

func resolveColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToUpper(strings.TrimSpace(col))] = i
	}
	for _, want := range bmfColumns {
		if _, ok := idx[want]; !ok {
			return nil, fmt.Errorf("BMF extract missing required column %q", want)
		}
	}
	return idx, nil
}

func parseRow(row []string, col map[string]int) (Organization, error) {
	get := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	revenue, err := parseAmount(get("REVENUE_AMT"))
	if err != nil {
		return Organization{}, err
	}
	assets, err := parseAmount(get("ASSET_AMT"))
	if err != nil {
		return Organization{}, err
	}

	ein := get("EIN")
	if ein == "" {
		return Organization{}, fmt.Errorf("row missing EIN")
	}

	foundationCode := get("FOUNDATION")

	return Organization{
		EIN:            ein,
		Name:           get("NAME"),
		State:          strings.ToUpper(get("STATE")),
		NTEECode:       strings.ToUpper(get("NTEE_CD")),
		Revenue:        revenue,
		Assets:         assets,
		IsFoundation:   foundationCode != "" && foundationCode != "0",
		FoundationCode: foundationCode,
	}, nil
}

func parseAmount(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", s, err)
	}
	return v, nil
}

// Lookup returns the organization for an EIN, the most selective predicate
// this index supports (O(1) via byEIN).
func (idx *Index) Lookup(ein string) (Organization, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	i, ok := idx.byEIN[ein]
	if !ok {
		return Organization{}, false
	}
	return idx.all[i], true
}

// Size returns the number of indexed organizations.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.all)
}

package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"xoned-commerce/internal/domain"
	productsvc "xoned-commerce/internal/service/product"
)

type ProductWriter interface {
	Upsert(ctx context.Context, in productsvc.Input) (*domain.Product, error)
}

type CapsuleLister interface {
	List(ctx context.Context) ([]domain.Capsule, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products by key.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
	capsules CapsuleLister
	byName   map[string]string
}

func NewCSVImporter(r io.Reader, products ProductWriter, capsules CapsuleLister) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:   csvr,
		products: products,
		capsules: capsules,
	}
}

type csvRow struct {
	line  int
	input productsvc.Input
}

// Run parses CSV rows and upserts products. Rows without a key continue the
// previous product and contribute an extra image.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["key"]; !ok {
		return 0, errors.New("missing key column")
	}
	if err := i.loadCapsules(ctx); err != nil {
		return 0, err
	}

	var (
		current  *csvRow
		imported int
	)

	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		key := pick(record, index, "key")
		if key == "" {
			if image := pick(record, index, "image"); current != nil && image != "" {
				current.input.Images = append(current.input.Images, image)
			}
			continue
		}

		row, err := i.parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		if current != nil {
			if err := i.save(ctx, current); err != nil {
				return imported, err
			}
			imported++
		}
		current = row
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if _, err := i.products.Upsert(ctx, row.input); err != nil {
		return fmt.Errorf("line %d: upsert product %q: %w", row.line, row.input.Key, err)
	}
	return nil
}

func (i *CSVImporter) loadCapsules(ctx context.Context) error {
	capsules, err := i.capsules.List(ctx)
	if err != nil {
		return fmt.Errorf("list capsules: %w", err)
	}
	i.byName = make(map[string]string, len(capsules))
	for _, c := range capsules {
		i.byName[strings.ToLower(c.Name)] = c.ID
	}
	return nil
}

// resolveCapsule accepts either a capsule id or a capsule name.
func (i *CSVImporter) resolveCapsule(ref string) (string, bool) {
	if _, err := uuid.Parse(ref); err == nil {
		return ref, true
	}
	id, ok := i.byName[strings.ToLower(ref)]
	return id, ok
}

func (i *CSVImporter) parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	in := productsvc.Input{
		Key:         pick(record, index, "key"),
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		Category:    pick(record, index, "category"),
		Images:      list(pick(record, index, "image")),
		Sizes:       list(pick(record, index, "sizes")),
		Colors:      list(pick(record, index, "colors")),
		Tags:        list(pick(record, index, "tags")),
		Status:      domain.ProductStatus(pick(record, index, "status")),
	}

	var err error
	if in.Price, err = strconv.ParseInt(pick(record, index, "price"), 10, 64); err != nil {
		return nil, fmt.Errorf("line %d: invalid price for key %q", line, in.Key)
	}
	if raw := pick(record, index, "stock"); raw != "" {
		if in.Stock, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("line %d: invalid stock for key %q", line, in.Key)
		}
	}
	if in.IsFeatured, err = flag(pick(record, index, "featured")); err != nil {
		return nil, fmt.Errorf("line %d: invalid featured flag for key %q", line, in.Key)
	}
	if in.IsNew, err = flag(pick(record, index, "new")); err != nil {
		return nil, fmt.Errorf("line %d: invalid new flag for key %q", line, in.Key)
	}

	ref := pick(record, index, "capsule")
	capsuleID, ok := i.resolveCapsule(ref)
	if !ok {
		return nil, fmt.Errorf("line %d: unknown capsule %q for key %q", line, ref, in.Key)
	}
	in.CapsuleID = capsuleID

	return &csvRow{line: line, input: in}, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

// list splits a pipe separated cell.
func list(cell string) []string {
	if cell == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(cell, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func flag(cell string) (bool, error) {
	if cell == "" {
		return false, nil
	}
	return strconv.ParseBool(cell)
}

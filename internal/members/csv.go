package members

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/bote/internal/model"
)

// Header is the CSV header for members.csv.
var Header = []string{"member_id", "name", "alias", "bizum", "favorite_products", "alcohol_portion", "pin_hash"}

const (
	numFields    = 7
	colID        = 0
	colName      = 1
	colAlias     = 2
	colBizum     = 3
	colFavorites = 4
	colPortion   = 5
	colPINHash   = 6
)

// ReadMembers reads members.csv.
func ReadMembers(r io.Reader) ([]model.Member, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading members CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var members []model.Member
	for i, rec := range records[1:] {
		m, err := UnmarshalMember(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		members = append(members, m)
	}
	return members, nil
}

// WriteMembers writes members.csv.
func WriteMembers(w io.Writer, members []model.Member) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, m := range members {
		if err := cw.Write(MarshalMember(m)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalMember converts a Member to a CSV row.
func MarshalMember(m model.Member) []string {
	row := make([]string, numFields)
	row[colID] = strconv.Itoa(m.ID)
	row[colName] = m.Name
	row[colAlias] = m.Alias
	row[colBizum] = m.Bizum
	row[colFavorites] = strings.Join(m.FavoriteProducts, ";")
	row[colPortion] = string(m.AlcoholPortion)
	row[colPINHash] = m.PINHash
	return row
}

// UnmarshalMember converts a CSV row to a Member.
func UnmarshalMember(record []string) (model.Member, error) {
	if len(record) != numFields {
		return model.Member{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.Atoi(record[colID])
	if err != nil {
		return model.Member{}, fmt.Errorf("parsing member_id %q: %w", record[colID], err)
	}

	portion, err := model.ParseAlcoholPortion(record[colPortion])
	if err != nil {
		return model.Member{}, err
	}

	var favorites []string
	if record[colFavorites] != "" {
		favorites = strings.Split(record[colFavorites], ";")
	}

	return model.Member{
		ID:               id,
		Name:             record[colName],
		Alias:            record[colAlias],
		Bizum:            record[colBizum],
		FavoriteProducts: favorites,
		AlcoholPortion:   portion,
		PINHash:          record[colPINHash],
	}, nil
}

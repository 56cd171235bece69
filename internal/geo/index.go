package geo

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"github.com/tlemaire/jobmarket/internal/normalize"
)

// Required columns of the commune reference table.
const (
	colCommune = "Nom_de_la_commune"
	colPostal  = "Code_postal"
	colLabel   = "Libellé_d_acheminement"
)

// Index holds the static commune reference data as two lookup maps,
// built once per process. On duplicate keys the first occurrence wins;
// that rule is part of the contract, it keeps geocoding reproducible.
type Index struct {
	labelByCode map[string]string
	codeByName  map[string]string
	sortedNames []string
}

// NewIndex loads the semicolon-delimited, ISO-8859-1 encoded commune
// table and builds the postal-code→routing-label and commune-name→postal-code
// maps.
func NewIndex(path string) (*Index, error) {

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open commune reference table")
	}
	defer file.Close()

	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(file))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read commune table header")
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colCommune, colPostal, colLabel} {
		if _, ok := columns[required]; !ok {
			return nil, errors.Errorf("commune table is missing column %q", required)
		}
	}

	idx := &Index{
		labelByCode: map[string]string{},
		codeByName:  map[string]string{},
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warnf("skipping malformed commune table row: %v", err)
			continue
		}

		if len(record) <= columns[colCommune] || len(record) <= columns[colPostal] || len(record) <= columns[colLabel] {
			continue
		}

		name := record[columns[colCommune]]
		code := record[columns[colPostal]]
		label := record[columns[colLabel]]

		if _, ok := idx.labelByCode[code]; !ok {
			idx.labelByCode[code] = label
		}
		if _, ok := idx.codeByName[name]; !ok {
			idx.codeByName[name] = code
			idx.sortedNames = append(idx.sortedNames, name)
		}
	}

	sort.Strings(idx.sortedNames)
	log.Infof("geo index loaded: %d communes, %d postal codes", len(idx.codeByName), len(idx.labelByCode))
	return idx, nil
}

// MatchCommune resolves a commune or arrondissement name to a postal
// code. The input is normalized first, then tried against the name map,
// then against the code→label map, and finally against any name of the
// form "<input> <NN>" — the lexicographically first candidate wins, which
// favors the lowest arrondissement number thanks to zero-padding.
// Returns the empty string when nothing matches.
func (i *Index) MatchCommune(commune string) string {

	if strings.TrimSpace(commune) == "" {
		return ""
	}

	key := normalize.Text(commune)
	if key == "" {
		return ""
	}

	if code, ok := i.codeByName[key]; ok {
		return code
	}
	if label, ok := i.labelByCode[key]; ok {
		return label
	}

	prefix := key + " "
	pos := sort.SearchStrings(i.sortedNames, prefix)
	if pos < len(i.sortedNames) && strings.HasPrefix(i.sortedNames[pos], prefix) {
		return i.codeByName[i.sortedNames[pos]]
	}

	return ""
}

// LabelForCode returns the routing label registered for a postal code.
func (i *Index) LabelForCode(code string) (string, bool) {
	label, ok := i.labelByCode[code]
	return label, ok
}

// Size reports how many distinct commune names the index carries.
func (i *Index) Size() int {
	return len(i.codeByName)
}

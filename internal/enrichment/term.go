// Package enrichment keeps the functional enrichment terms of the active subset and
// talks to the backend that computes them.
package enrichment

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
)

type Term struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	PValue   float64  `json:"p_value"`
	FDRRate  float64  `json:"fdr_rate"`
	Proteins []string `json:"proteins"`
}

// Category is a term category as the backend names it, with the label shown to users.
type Category struct {
	Key   string
	Label string
}

// ResetCategory clears the category filter.
const ResetCategory = "RESET"

// Categories is in the order the filter dropdown lists them.
var Categories = []Category{
	{ResetCategory, "No Filter"},
	{"TISSUES", "Tissue expression"},
	{"KEGG", "KEGG Pathway"},
	{"COMPARTMENTS", "Subcellular localization"},
	{"Process", "Biological Process"},
	{"Component", "Cellular Component(Gene Ontology)"},
	{"Function", "Molecular Function"},
	{"Keyword", "Annotated Keywords(UniProt)"},
	{"SMART", "Protein Domains(SMART)"},
	{"InterPro", "Protein Domains and Features(InterPro)"},
	{"Pfam", "Protein Domains(Pfam)"},
	{"PMID", "Reference Publications(PubMed)"},
	{"RCTM", "Reactome Pathway"},
	{"WikiPathways", "WikiPathways"},
	{"MPO", "Mammalian Phenotype Ontology"},
	{"NetworkNeighborAL", "Network"},
}

// LookupCategory finds a category by key.
func LookupCategory(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// SortByFDR sorts terms by ascending false discovery rate, keeping the backend's order
// for ties.
func SortByFDR(terms []Term) {
	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].FDRRate < terms[j].FDRRate
	})
}

// WriteCSV writes terms with the columns category, fdr_rate, name and proteins.
func WriteCSV(w io.Writer, terms []Term) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"category", "fdr_rate", "name", "proteins"}); err != nil {
		return err
	}
	for _, t := range terms {
		record := []string{
			t.Category,
			strconv.FormatFloat(t.FDRRate, 'g', -1, 64),
			t.Name,
			strings.Join(t.Proteins, ","),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

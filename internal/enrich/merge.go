// Package enrich joins the secondary enrichment dataset onto classified
// registrar records.
package enrich

import (
	"fmt"
	"sort"

	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/registrar"
)

const source = "enrichment"

// Merge fills enrichment fields on copies of records. Primary values win:
// website, notes, whois server and status are only filled when empty.
// Website provenance and confidence always come from the enrichment entry.
//
// Entries whose id is not in records are reported as orphans. Several entries
// for one id are collapsed first-present-wins and reported as duplicates.
func Merge(records []registrar.Record, entries []registrar.Enrichment) ([]registrar.Record, []registrar.Warning) {
	byID, warnings := index(entries)

	known := make(map[int]bool, len(records))
	out := make([]registrar.Record, len(records))
	filled := 0
	for i, r := range records {
		known[r.IANAID] = true
		if e, ok := byID[r.IANAID]; ok {
			r = apply(r, e)
			filled++
		}
		out[i] = r
	}

	orphans := make([]int, 0)
	for id := range byID {
		if !known[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Ints(orphans)
	for _, id := range orphans {
		warnings = append(warnings, registrar.Warning{
			Kind:    registrar.JoinOrphanWarning,
			Source:  source,
			IANAID:  id,
			Message: "enrichment entry has no matching registrar",
		})
		log.Warn(log.CatEnrich, "orphan enrichment entry", "iana_id", id)
	}

	log.Info(log.CatEnrich, "enrichment merged", "records", len(out), "matched", filled, "orphans", len(orphans))
	return out, warnings
}

// index groups entries by id, merging repeats.
func index(entries []registrar.Enrichment) (map[int]registrar.Enrichment, []registrar.Warning) {
	byID := make(map[int]registrar.Enrichment, len(entries))
	var warnings []registrar.Warning
	for _, e := range entries {
		prev, dup := byID[e.IANAID]
		if !dup {
			byID[e.IANAID] = e
			continue
		}
		byID[e.IANAID] = combine(prev, e)
		warnings = append(warnings, registrar.Warning{
			Kind:    registrar.DuplicateIDWarning,
			Source:  source,
			IANAID:  e.IANAID,
			Message: "repeated enrichment entry, earlier values kept",
		})
		log.Warn(log.CatEnrich, "duplicate enrichment entry", "iana_id", e.IANAID)
	}
	return byID, warnings
}

func combine(a, b registrar.Enrichment) registrar.Enrichment {
	pick := func(x, y *string) *string {
		if registrar.Present(x) {
			return x
		}
		return y
	}
	a.Website = pick(a.Website, b.Website)
	a.WebsiteSource = pick(a.WebsiteSource, b.WebsiteSource)
	a.WebsiteConfidence = pick(a.WebsiteConfidence, b.WebsiteConfidence)
	a.Notes = pick(a.Notes, b.Notes)
	a.WhoisServer = pick(a.WhoisServer, b.WhoisServer)
	a.Status = pick(a.Status, b.Status)
	return a
}

func apply(r registrar.Record, e registrar.Enrichment) registrar.Record {
	fill(&r.Website, e.Website)
	fill(&r.Notes, e.Notes)
	fill(&r.WhoisServer, e.WhoisServer)
	fill(&r.Status, e.Status)
	r.WebsiteSource = registrar.Value(e.WebsiteSource)
	r.WebsiteConfidence = registrar.Value(e.WebsiteConfidence)
	return r
}

func fill(dst *string, v *string) {
	if *dst == "" && registrar.Present(v) {
		*dst = registrar.Value(v)
	}
}

// Summary describes how many records carry each enrichment field.
type Summary struct {
	Records     int
	Website     int
	WhoisServer int
	Status      int
	Notes       int
	BySource    map[string]int
}

// Summarize counts populated enrichment fields.
func Summarize(records []registrar.Record) Summary {
	s := Summary{Records: len(records), BySource: make(map[string]int)}
	for _, r := range records {
		if r.Website != "" {
			s.Website++
			src := r.WebsiteSource
			if src == "" {
				src = "primary"
			}
			s.BySource[src]++
		}
		if r.WhoisServer != "" {
			s.WhoisServer++
		}
		if r.Status != "" {
			s.Status++
		}
		if r.Notes != "" {
			s.Notes++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d/%d with website, %d with whois server, %d with status",
		s.Website, s.Records, s.WhoisServer, s.Status)
}

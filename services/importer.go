package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"scholar-graph/apierr"
	"scholar-graph/lock"
	"scholar-graph/models"
	"scholar-graph/store"
)

const unknownScholarName = "Unknown Scholar"

// ImportResult fasst den Import eines Datensatzes zusammen.
type ImportResult struct {
	ScholarID           string `json:"scholar_id"`
	Role                string `json:"role"`
	Interests           int    `json:"interests"`
	Publications        int    `json:"publications"`
	SkippedPublications int    `json:"skipped_publications"`
	Coauthors           int    `json:"coauthors"`
	Institutions        int    `json:"institutions"`
}

// DirStats fasst den Import eines Verzeichnisses zusammen.
type DirStats struct {
	Files        int      `json:"files"`
	Imported     int      `json:"imported"`
	Failed       int      `json:"failed"`
	FailedFiles  []string `json:"failed_files,omitempty"`
	Publications int      `json:"publications"`
	Coauthors    int      `json:"coauthors"`
}

// ScholarImporter schreibt gescrapte Datensätze in den Store. Jeder Datensatz
// ist eine Transaktion.
type ScholarImporter struct {
	Store  *store.Store
	Locker lock.PairLocker
	Logger *zap.Logger
}

// NewScholarImporter erstellt einen Importer. Ohne Locker wird lock.Noop verwendet.
func NewScholarImporter(st *store.Store, locker lock.PairLocker, logger *zap.Logger) *ScholarImporter {
	if locker == nil {
		locker = lock.Noop{}
	}
	return &ScholarImporter{
		Store:  st,
		Locker: locker,
		Logger: logger.With(zap.String("component", "scholar_importer")),
	}
}

// ImportRecord importiert einen Datensatz als Primär-Scholar. Eine bestehende
// NotInterested-Markierung bleibt erhalten.
func (imp *ScholarImporter) ImportRecord(ctx context.Context, rec *ScholarRecord) (*ImportResult, error) {
	if err := rec.Validate(); err != nil {
		scholarsImportedTotal.WithLabelValues(outcomeError).Inc()
		return nil, err
	}
	rec.ScholarID = strings.TrimSpace(rec.ScholarID)
	log := imp.Logger.With(zap.String("scholar_id", rec.ScholarID))

	pairs := make([][2]string, 0, len(rec.Coauthors))
	for _, co := range rec.Coauthors {
		pairs = append(pairs, [2]string{rec.ScholarID, strings.TrimSpace(co.ScholarID)})
	}
	unlock, err := imp.Locker.LockPairs(ctx, pairs)
	if err != nil {
		scholarsImportedTotal.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("lock coauthor pairs: %w", err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			log.Error("Failed to release pair locks", zap.Error(err))
		}
	}()

	var res *ImportResult
	err = imp.Store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		res, err = imp.importRecord(ctx, tx, rec, log)
		return err
	})
	if err != nil {
		scholarsImportedTotal.WithLabelValues(outcomeError).Inc()
		log.Error("Scholar import rolled back", zap.Error(err))
		return nil, err
	}
	scholarsImportedTotal.WithLabelValues(outcomeOK).Inc()
	log.Info("Scholar imported",
		zap.Int("publications", res.Publications),
		zap.Int("skipped_publications", res.SkippedPublications),
		zap.Int("coauthors", res.Coauthors),
		zap.Int("institutions", res.Institutions))
	return res, nil
}

func (imp *ScholarImporter) importRecord(ctx context.Context, tx *store.Store, rec *ScholarRecord, log *zap.Logger) (*ImportResult, error) {
	id := rec.ScholarID
	res := &ImportResult{ScholarID: id}

	role := models.RolePrimary
	existing, err := tx.Scholar(ctx, id)
	switch {
	case err == nil && existing.Role == models.RoleNotInterested:
		role = models.RoleNotInterested
	case err != nil && !apierr.IsNotFound(err):
		return nil, err
	}
	res.Role = role.String()

	name := strings.TrimSpace(rec.Name)
	if name == "" {
		name = unknownScholarName
	}
	data := datatypes.JSONMap{}
	if rec.Source != "" {
		data["source"] = rec.Source
	}
	if rec.Filled != nil {
		data["filled"] = rec.Filled
	}
	if rec.ContainerType != "" {
		data["container_type"] = rec.ContainerType
	}
	if err := tx.UpsertEntity(ctx, &models.Entity{ID: id, Kind: models.KindScholar, Name: name, Data: data}); err != nil {
		return nil, err
	}

	cites := make(map[string]int, len(rec.CitesPerYear))
	for year, n := range rec.CitesPerYear {
		cites[year] = int(n)
	}
	now := time.Now().UTC()
	if err := tx.UpsertScholar(ctx, &models.Scholar{
		ID:           id,
		Affiliation:  strings.TrimSpace(rec.Affiliation),
		EmailDomain:  rec.EmailDomain,
		Homepage:     rec.Homepage,
		URLPicture:   rec.URLPicture,
		CitedBy:      int(rec.CitedBy),
		CitedBy5y:    int(rec.CitedBy5y),
		HIndex:       int(rec.HIndex),
		HIndex5y:     int(rec.HIndex5y),
		I10Index:     int(rec.I10Index),
		I10Index5y:   int(rec.I10Index5y),
		CitesPerYear: datatypes.NewJSONType(cites),
		Role:         role,
		LastUpdated:  &now,
	}); err != nil {
		return nil, err
	}

	if err := tx.ReplaceInterests(ctx, id, rec.Interests); err != nil {
		return nil, err
	}
	res.Interests = len(rec.Interests)

	for _, pub := range rec.Publications {
		ok, err := imp.importPublication(ctx, tx, id, pub)
		if err != nil {
			return nil, err
		}
		if !ok {
			res.SkippedPublications++
			continue
		}
		res.Publications++
	}

	n, err := imp.importInstitutions(ctx, tx, id, rec)
	if err != nil {
		return nil, err
	}
	res.Institutions = n

	for _, co := range rec.Coauthors {
		ok, err := imp.importCoauthor(ctx, tx, id, co)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Debug("Skipping coauthor without id", zap.String("name", co.Name))
			continue
		}
		res.Coauthors++
	}
	return res, nil
}

// importPublication meldet false für Publikationen ohne Titel.
func (imp *ScholarImporter) importPublication(ctx context.Context, tx *store.Store, scholarID string, rec PublicationRecord) (bool, error) {
	title := models.NormalizeText(rec.Bib.Title)
	if title == "" {
		return false, nil
	}
	id := models.PublicationID(rec.CitesID, string(rec.ClusterID), title, scholarID)
	pubID := rec.AuthorPubID
	if pubID == "" {
		pubID = models.LegacyPubID(id)
	}
	citations := int(rec.NumCitations)
	if citations == 0 {
		citations = int(rec.CitedBy)
	}

	pub := &models.Publication{
		ID:           id,
		PubID:        pubID,
		Title:        title,
		Year:         rec.Bib.EffectiveYear(),
		Venue:        strings.TrimSpace(rec.Bib.Citation),
		CitationText: rec.Bib.CitationText(),
		NumCitations: citations,
		CitedByURL:   rec.CitedByURL,
	}
	if pub.Venue == "" {
		pub.Venue = strings.TrimSpace(rec.Bib.Venue)
	}
	if err := tx.UpsertPublication(ctx, pub); err != nil {
		return false, err
	}

	entityData := datatypes.JSONMap{"venue": pub.Venue}
	if pub.Year > 0 {
		entityData["pub_year"] = pub.Year
	}
	if _, err := tx.EnsureEntity(ctx, &models.Entity{ID: id, Kind: models.KindPublication, Name: title, Data: entityData}); err != nil {
		return false, err
	}
	if _, err := tx.AddAuthorship(ctx, scholarID, id); err != nil {
		return false, err
	}
	return true, nil
}

// importInstitutions übernimmt explizite Institutionen oder leitet eine aus
// der Affiliation ab.
func (imp *ScholarImporter) importInstitutions(ctx context.Context, tx *store.Store, scholarID string, rec *ScholarRecord) (int, error) {
	insts := rec.Institutions
	if len(insts) == 0 {
		aff := models.NormalizeText(rec.Affiliation)
		if aff == "" {
			return 0, nil
		}
		current := true
		insts = []InstitutionRecord{{Name: aff, IsCurrent: &current}}
	}

	n := 0
	for _, ir := range insts {
		name := models.NormalizeText(ir.Name)
		if name == "" {
			continue
		}
		instID := strings.TrimSpace(ir.ID)
		if instID == "" {
			instID = institutionID(name)
		}
		if err := tx.UpsertInstitution(ctx, &models.Institution{
			ID: instID, Name: name, Type: ir.Type, URL: ir.URL, Lab: ir.Lab, Country: ir.Country, Region: ir.Region,
		}); err != nil {
			return n, err
		}
		if _, err := tx.EnsureEntity(ctx, &models.Entity{ID: instID, Kind: models.KindInstitution, Name: name}); err != nil {
			return n, err
		}
		link := &models.ScholarInstitution{ScholarID: scholarID, InstitutionID: instID, IsCurrent: ir.IsCurrent == nil || *ir.IsCurrent}
		if ir.StartYear != nil {
			y := int(*ir.StartYear)
			link.StartYear = &y
		}
		if ir.EndYear != nil {
			y := int(*ir.EndYear)
			link.EndYear = &y
		}
		if err := tx.LinkInstitution(ctx, link); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// importCoauthor legt den Coautor als Sekundär-Scholar an, falls er fehlt,
// und hebt das Gewicht beider Richtungen auf die beobachtete Anzahl.
func (imp *ScholarImporter) importCoauthor(ctx context.Context, tx *store.Store, scholarID string, co CoauthorRecord) (bool, error) {
	coID := strings.TrimSpace(co.ScholarID)
	if coID == "" || coID == scholarID {
		return false, nil
	}
	name := strings.TrimSpace(co.Name)
	if name == "" {
		name = unknownScholarName
	}
	if _, err := tx.EnsureEntity(ctx, &models.Entity{
		ID: coID, Kind: models.KindScholar, Name: name,
		Data: datatypes.JSONMap{"is_coauthor": true},
	}); err != nil {
		return false, err
	}
	if _, err := tx.EnsureScholar(ctx, &models.Scholar{
		ID: coID, Affiliation: strings.TrimSpace(co.Affiliation), Role: models.RoleSecondary,
	}); err != nil {
		return false, err
	}

	observed := max(int(co.CoAuthoredPapers), 1)
	for _, dir := range [][2]string{{scholarID, coID}, {coID, scholarID}} {
		if err := raiseWeight(ctx, tx, dir[0], dir[1], observed); err != nil {
			return false, err
		}
	}
	return true, nil
}

// raiseWeight erhöht das Gewicht von source->target um max(0, observed-current).
func raiseWeight(ctx context.Context, tx *store.Store, source, target string, observed int) error {
	current := 0
	existing, err := tx.Relationship(ctx, source, target, models.RelationCoauthor)
	switch {
	case err == nil:
		current = existing.Weight
	case !apierr.IsNotFound(err):
		return err
	}
	_, err = tx.UpsertRelationship(ctx, models.Relationship{
		SourceID: source, SourceKind: models.KindScholar,
		TargetID: target, TargetKind: models.KindScholar,
		Type: models.RelationCoauthor,
	}, max(0, observed-current))
	return err
}

func institutionID(name string) string {
	sum := md5.Sum([]byte(strings.ToLower(name)))
	return "inst_" + hex.EncodeToString(sum[:])[:12]
}

// ImportFile importiert eine JSON-Datei.
func (imp *ScholarImporter) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rec, err := DecodeRecord(f)
	if err != nil {
		scholarsImportedTotal.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return imp.ImportRecord(ctx, rec)
}

// ImportDir importiert alle *.json-Dateien unter dir in sortierter
// Reihenfolge. Fehlerhafte Dateien werden gezählt und übersprungen.
func (imp *ScholarImporter) ImportDir(ctx context.Context, dir string) (*DirStats, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)

	stats := &DirStats{Files: len(files)}
	imp.Logger.Info("Importing scholar directory", zap.String("dir", dir), zap.Int("files", len(files)))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		res, err := imp.ImportFile(ctx, path)
		if err != nil {
			imp.Logger.Error("Import failed", zap.String("file", path), zap.Error(err))
			stats.Failed++
			stats.FailedFiles = append(stats.FailedFiles, filepath.Base(path))
			continue
		}
		stats.Imported++
		stats.Publications += res.Publications
		stats.Coauthors += res.Coauthors
	}
	imp.Logger.Info("Directory import finished",
		zap.Int("files", stats.Files),
		zap.Int("imported", stats.Imported),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

package models

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PublicationID leitet den stabilen Primärschlüssel einer Publikation ab:
// erste Zitations-ID, sonst Cluster-ID, sonst ein Hash aus Titel und Autor.
// Der Titel wird vorher NFC-normalisiert, damit Re-Imports dieselbe ID erzeugen.
func PublicationID(citesIDs []string, clusterID, title, scholarID string) string {
	for _, id := range citesIDs {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	}
	if clusterID = strings.TrimSpace(clusterID); clusterID != "" {
		return clusterID
	}
	sum := md5.Sum([]byte(NormalizeText(title)))
	id := "title_" + hex.EncodeToString(sum[:])[:16]
	if scholarID != "" {
		suffix := scholarID
		if len(suffix) > 8 {
			suffix = suffix[:8]
		}
		id += "_" + suffix
	}
	return id
}

// LegacyPubID ist die alte pub_id, falls der Scraper keine author_pub_id liefert.
func LegacyPubID(publicationID string) string {
	sum := md5.Sum([]byte(publicationID))
	return "pub_" + hex.EncodeToString(sum[:])[:12]
}

// NormalizeText bringt Freitext in NFC-Form und entfernt überflüssige Leerzeichen.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

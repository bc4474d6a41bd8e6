package app

import (
	"encoding/json"
	"fmt"
	"time"

	"rna/domain"
	"rna/pkg/aws"
	"rna/pkg/progress"
)

// RnaPackage is the document a device downloads to work on an RNA offline.
type RnaPackage struct {
	Rna         domain.Rna            `json:"rna"`
	Answers     []domain.Answer       `json:"answers"`
	Categories  []domain.ViewCategory `json:"categories"`
	Overview    progress.Overview     `json:"overview"`
	GeneratedAt time.Time             `json:"generatedAt"`
}

func newRnaPackage(p *rnaProgress, generatedAt time.Time) RnaPackage {
	return RnaPackage{
		Rna:         p.Rna,
		Answers:     p.Answers,
		Categories:  p.Categories,
		Overview:    progress.Summarize(p.Categories),
		GeneratedAt: generatedAt,
	}
}

// uploadPackage stores pkg and returns its public URL.
func uploadPackage(store PackageStore, pkg RnaPackage) (string, error) {
	data, err := json.Marshal(pkg)
	if err != nil {
		return "", fmt.Errorf("failed to encode package: %w", err)
	}

	key := aws.PackageKey(pkg.Rna.ID)
	if err := store.Upload(key, data); err != nil {
		return "", fmt.Errorf("failed to upload package: %w", err)
	}

	return store.URL(key), nil
}

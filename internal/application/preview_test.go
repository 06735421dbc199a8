package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"defectgen/internal/domain/entity"
	"defectgen/internal/infrastructure/defects"
	"defectgen/internal/infrastructure/storage"
	"defectgen/internal/infrastructure/vision"
)

func TestPreviewService_Preview(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryDatasetStore()
	putImage(t, store, "in/p.png", grayImage(120, 90, 100))

	painters, err := defects.NewPainters([]entity.DefectType{entity.DefectScratch, entity.DefectBlur})
	require.NoError(t, err)
	log, _ := newLogger()
	svc := NewPreviewService(store, painters, vision.NewMooreContourFinder(), log)

	res, err := svc.Preview(ctx, "in/p.png", "out", 3)
	require.NoError(t, err)
	require.NotEmpty(t, res.Defects)
	require.Zero(t, res.Mismatch)
	require.Len(t, res.BoxLines, len(res.Defects))
	require.NotEmpty(t, res.Polygons)

	require.Len(t, res.Files, 6)
	for _, p := range res.Files {
		require.True(t, store.Exists(ctx, p), p)
	}

	data, ok := store.File("out/p.json")
	require.True(t, ok)
	var doc struct {
		PicName string          `json:"pic_name"`
		Defects []entity.Defect `json:"defects"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, "p.png", doc.PicName)
	require.Len(t, doc.Defects, len(res.Defects))
}

func TestPreviewService_MissingImage(t *testing.T) {
	log, _ := newLogger()
	svc := NewPreviewService(storage.NewMemoryDatasetStore(), nil, vision.NewMooreContourFinder(), log)
	_, err := svc.Preview(context.Background(), "in/none.png", "out", 1)
	require.ErrorIs(t, err, entity.ErrResourceNotFound)
}

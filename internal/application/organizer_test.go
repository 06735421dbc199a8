package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"defectgen/internal/domain/entity"
	"defectgen/internal/infrastructure/storage"
)

func TestOrganizer_Collect(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryDatasetStore()
	putImage(t, store, "src/x/1.JPG", grayImage(4, 4, 10))
	putImage(t, store, "src/y/z/2.png", grayImage(4, 4, 20))
	store.PutFile("src/readme.md", []byte("photos"))

	log, _ := newLogger()
	count, err := NewOrganizer(store, log).Collect(ctx, "src", "pool")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	names, err := store.List(ctx, "pool")
	require.NoError(t, err)
	require.Len(t, names, 2)
	exts := map[string]bool{}
	for _, name := range names {
		ext := filepath.Ext(name)
		exts[ext] = true
		_, err := uuid.Parse(strings.TrimSuffix(name, ext))
		require.NoError(t, err)
	}
	require.Equal(t, map[string]bool{".jpg": true, ".png": true}, exts)
	// Исходники остаются на месте.
	require.True(t, store.Exists(ctx, "src/x/1.JPG"))
}

func TestOrganizer_CollectMissingRoot(t *testing.T) {
	log, _ := newLogger()
	_, err := NewOrganizer(storage.NewMemoryDatasetStore(), log).Collect(context.Background(), "nowhere", "pool")
	require.ErrorIs(t, err, entity.ErrResourceNotFound)
}

func TestOrganizer_Organize(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryDatasetStore()
	putImage(t, store, "pool/b.PNG", grayImage(4, 4, 10))
	putImage(t, store, "pool/a.jpg", grayImage(4, 4, 20))
	putImage(t, store, "pool/c.jpg", grayImage(4, 4, 30))

	log, _ := newLogger()
	count, err := NewOrganizer(store, log).Organize(ctx, "pool", "out", 2)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	require.True(t, store.Exists(ctx, "out/dataset1/000000.jpg"))
	require.True(t, store.Exists(ctx, "out/dataset1/000001.png"))
	require.True(t, store.Exists(ctx, "out/dataset2/000002.jpg"))
	require.False(t, store.Exists(ctx, "pool/a.jpg"))
}

func TestOrganizer_SplitByCategory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryDatasetStore()
	for _, name := range []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg"} {
		putImage(t, store, filepath.Join("photos/set", name), grayImage(4, 4, 10))
	}

	log, _ := newLogger()
	counts, err := NewOrganizer(store, log).SplitByCategory(ctx, "photos/set", "sorted",
		[]entity.DefectType{entity.DefectScratch, entity.DefectNoise})
	require.NoError(t, err)
	require.Equal(t, map[entity.DefectType]int{entity.DefectScratch: 3, entity.DefectNoise: 2}, counts)

	scratch, err := store.List(ctx, "sorted/set_scratch")
	require.NoError(t, err)
	require.Equal(t, []string{"1.jpg", "3.jpg", "5.jpg"}, scratch)
	noise, err := store.List(ctx, "sorted/set_noise")
	require.NoError(t, err)
	require.Equal(t, []string{"2.jpg", "4.jpg"}, noise)
}

func TestOrganizer_SplitByCategoryNoCategories(t *testing.T) {
	log, _ := newLogger()
	_, err := NewOrganizer(storage.NewMemoryDatasetStore(), log).SplitByCategory(context.Background(), "a", "b", nil)
	require.Error(t, err)
}

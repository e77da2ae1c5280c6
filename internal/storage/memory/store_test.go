package memory

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/medrec/internal/core/domain"
)

func patient(id int32, name string, age int32) domain.Patient {
	return domain.Patient{ID: id, Name: name, Age: age, Diagnosis: "Flu", Room: 100 + id}
}

func ids(records []domain.Patient) []int32 {
	out := make([]int32, len(records))
	for i, p := range records {
		out[i] = p.ID
	}
	return out
}

func TestStore_InsertDistinct(t *testing.T) {
	store := New()

	for i := int32(1); i <= 20; i++ {
		require.NoError(t, store.Insert(patient(i, fmt.Sprintf("P%d", i), 20+i)))
	}

	assert.Equal(t, 20, store.Count())
	all := store.All()
	require.Len(t, all, 20)
	for i, p := range all {
		assert.Equal(t, int32(i+1), p.ID, "FIFO order")
	}
}

func TestStore_InsertDuplicateLeavesStoreUnchanged(t *testing.T) {
	store := New()
	require.NoError(t, store.Insert(patient(1, "Alice", 30)))

	before := store.All()
	err := store.Insert(patient(1, "Mallory", 40))

	require.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.Equal(t, 1, store.Count())
	assert.Equal(t, before, store.All())
}

func TestStore_InsertChecksIDBeforeAge(t *testing.T) {
	store := New()
	require.NoError(t, store.Insert(patient(1, "Alice", 30)))

	err := store.Insert(patient(1, "Bob", 150))
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestStore_InsertAgeBoundaries(t *testing.T) {
	tests := []struct {
		age     int32
		wantErr bool
	}{
		{0, true},
		{1, false},
		{125, false},
		{126, true},
		{-1, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("age=%d", tt.age), func(t *testing.T) {
			store := New()
			err := store.Insert(patient(1, "X", tt.age))
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidAge)
				assert.Zero(t, store.Count())
				assert.False(t, store.Contains(1))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, store.Count())
		})
	}
}

func TestStore_InsertNormalizes(t *testing.T) {
	store := New()
	long := strings.Repeat("n", domain.NameMaxLength+4)
	require.NoError(t, store.Insert(domain.Patient{ID: 1, Name: long + "\n", Age: 5, Diagnosis: "Cold\n"}))

	got, ok := store.FindByID(1)
	require.True(t, ok)
	assert.Equal(t, long[:domain.NameMaxLength], got.Name)
	assert.Equal(t, "Cold", got.Diagnosis)
}

func TestStore_FindByID(t *testing.T) {
	store := New()
	require.NoError(t, store.Insert(patient(1, "Alice", 30)))
	require.NoError(t, store.Insert(patient(2, "Bob", 40)))

	got, ok := store.FindByID(2)
	require.True(t, ok)
	assert.Equal(t, "Bob", got.Name)

	_, ok = store.FindByID(3)
	assert.False(t, ok)
}

func TestStore_FindByName(t *testing.T) {
	store := New()
	require.NoError(t, store.Insert(patient(1, "Alice", 30)))
	require.NoError(t, store.Insert(patient(2, "Bob", 40)))
	require.NoError(t, store.Insert(patient(3, "Alice", 50)))

	got, ok := store.FindByName("Alice\n")
	require.True(t, ok)
	assert.Equal(t, int32(1), got.ID, "first match in store order")

	_, ok = store.FindByName("alice")
	assert.False(t, ok, "match is case sensitive")

	_, ok = store.FindByName("Ali")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	store := New()
	for i := int32(1); i <= 4; i++ {
		require.NoError(t, store.Insert(patient(i, "P", 30)))
	}

	removed, err := store.Delete(2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), removed.ID)
	assert.Equal(t, 3, store.Count())
	assert.Equal(t, []int32{1, 3, 4}, ids(store.All()))

	_, ok := store.FindByID(2)
	assert.False(t, ok)
	assert.False(t, store.Contains(2))

	// The id is free again.
	require.NoError(t, store.Insert(patient(2, "Again", 31)))
	assert.Equal(t, []int32{1, 3, 4, 2}, ids(store.All()))
}

func TestStore_DeleteAbsent(t *testing.T) {
	store := New()
	require.NoError(t, store.Insert(patient(1, "Alice", 30)))

	_, err := store.Delete(9)
	require.ErrorIs(t, err, domain.ErrPatientNotFound)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, 1, store.Count())
}

func TestStore_AllReturnsCopy(t *testing.T) {
	store := New()
	require.NoError(t, store.Insert(patient(1, "Alice", 30)))

	all := store.All()
	all[0].Name = "changed"

	got, _ := store.FindByID(1)
	assert.Equal(t, "Alice", got.Name)
}

func TestStore_CountMatchesEnumeration(t *testing.T) {
	store := New(WithCapacity(8), WithIndexShards(4))

	ops := []func(){
		func() { _ = store.Insert(patient(1, "A", 10)) },
		func() { _ = store.Insert(patient(2, "B", 200)) },
		func() { _ = store.Insert(patient(3, "C", 30)) },
		func() { _, _ = store.Delete(1) },
		func() { _, _ = store.Delete(7) },
		func() { _ = store.Insert(patient(3, "D", 40)) },
	}
	for _, op := range ops {
		op()
		assert.Equal(t, len(store.All()), store.Count())
	}
	assert.Equal(t, []int32{3}, ids(store.All()))
}

func TestStore_Scan(t *testing.T) {
	store := New()
	for i := int32(1); i <= 5; i++ {
		require.NoError(t, store.Insert(patient(i, "P", 30)))
	}

	var seen []int32
	store.Scan(func(p domain.Patient) bool {
		seen = append(seen, p.ID)
		return p.ID < 3
	})
	assert.Equal(t, []int32{1, 2, 3}, seen)
}

func TestStore_Replace(t *testing.T) {
	store := New()
	require.NoError(t, store.Insert(patient(1, "Alice", 30)))
	require.NoError(t, store.Insert(patient(2, "Bob", 40)))

	// Trusted data may break current validation rules.
	legacy := []domain.Patient{
		{ID: 7, Name: "Old", Age: 140},
		{ID: 8, Name: "First", Age: 30},
		{ID: 8, Name: "Second", Age: 31},
	}
	dropped := store.Replace(legacy)

	assert.Equal(t, 1, dropped)
	assert.Equal(t, []int32{7, 8}, ids(store.All()))
	assert.False(t, store.Contains(1))
	assert.True(t, store.Contains(7))

	got, _ := store.FindByID(8)
	assert.Equal(t, "First", got.Name)

	err := store.Insert(patient(7, "Dup", 30))
	assert.ErrorIs(t, err, domain.ErrDuplicateID)

	store.Clear()
	assert.Zero(t, store.Count())
	assert.Empty(t, store.All())
}

func TestStore_ConcurrentInsert(t *testing.T) {
	store := New()
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = store.Insert(patient(int32(w*100+i), "P", 30))
				store.Contains(int32(i))
				store.All()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 200, store.Count())
}

func TestStore_ConcurrentReplace(t *testing.T) {
	store := New(WithIndexShards(4))
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				batch := []domain.Patient{patient(int32(w), "P", 30), patient(int32(w+10), "Q", 40)}
				store.Replace(batch)
				_ = store.Insert(patient(int32(1000+w*1000+i), "R", 50))
				store.Contains(int32(w))
				store.Count()
			}
		}(w)
	}
	wg.Wait()

	// The last Replace plus any inserts after it survive, with a
	// consistent index.
	all := store.All()
	assert.Equal(t, len(all), store.Count())
	for _, p := range all {
		assert.True(t, store.Contains(p.ID))
	}
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

type cachedCourse struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func TestCacheHelper_SetGet(t *testing.T) {
	_, client := newTestCache(t)
	ctx := context.Background()

	helper := NewCacheHelper(client, CourseCacheConfig.Prefix)

	course := cachedCourse{ID: 7, Title: "Operating Systems"}
	if err := helper.Set(ctx, "id:7", course, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got cachedCourse
	if err := helper.Get(ctx, "id:7", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != course {
		t.Errorf("Expected %+v, got %+v", course, got)
	}

	exists, err := helper.Exists(ctx, "id:7")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Key should exist after Set")
	}
}

func TestCacheHelper_GetMiss(t *testing.T) {
	_, client := newTestCache(t)
	ctx := context.Background()

	helper := NewCacheHelper(client, CourseCacheConfig.Prefix)

	var got cachedCourse
	err := helper.Get(ctx, "id:404", &got)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("Expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_NilClient(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, CourseCacheConfig.Prefix)

	var got cachedCourse
	if err := helper.Get(ctx, "id:1", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Fatalf("Expected ErrCacheNotAvailable, got %v", err)
	}

	// CacheOrExecute must still serve the value from the fetch path.
	var dest cachedCourse
	err := helper.CacheOrExecute(ctx, "id:1", &dest, time.Minute, func() (interface{}, error) {
		return cachedCourse{ID: 1, Title: "Databases"}, nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute without redis failed: %v", err)
	}
	if dest.ID != 1 {
		t.Errorf("Expected fetched value, got %+v", dest)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	_, client := newTestCache(t)
	ctx := context.Background()

	helper := NewCacheHelper(client, CourseCacheConfig.Prefix)

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedCourse{ID: 3, Title: "Networks"}, nil
	}

	var first cachedCourse
	if err := helper.CacheOrExecute(ctx, "id:3", &first, time.Minute, fetch); err != nil {
		t.Fatalf("First CacheOrExecute failed: %v", err)
	}

	var second cachedCourse
	if err := helper.CacheOrExecute(ctx, "id:3", &second, time.Minute, fetch); err != nil {
		t.Fatalf("Second CacheOrExecute failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("Expected one fetch call, got %d", calls)
	}
	if second.Title != "Networks" {
		t.Errorf("Expected cached value, got %+v", second)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	_, client := newTestCache(t)
	ctx := context.Background()

	helper := NewCacheHelper(client, CourseCacheConfig.Prefix)

	for _, key := range []string{"teacher:t1:page:1", "teacher:t1:page:2", "teacher:t2:page:1"} {
		if err := helper.Set(ctx, key, cachedCourse{ID: 1}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "teacher:t1:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	if exists, _ := helper.Exists(ctx, "teacher:t1:page:1"); exists {
		t.Error("Matching key should be gone")
	}
	if exists, _ := helper.Exists(ctx, "teacher:t2:page:1"); !exists {
		t.Error("Non-matching key should survive")
	}
}

func TestCacheManager_Expiry(t *testing.T) {
	mr, client := newTestCache(t)
	ctx := context.Background()

	cm := NewCacheManager(client)

	if err := cm.Course.Set(ctx, "id:9", cachedCourse{ID: 9, Title: "Crypto"}, CourseCacheConfig.TTL); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// miniredis only advances TTLs manually
	mr.FastForward(CourseCacheConfig.TTL + time.Second)

	var got cachedCourse
	if err := cm.Course.Get(ctx, "id:9", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("Expected expiry to evict the key, got %v", err)
	}
}

func TestInvalidateEnrollmentCache(t *testing.T) {
	_, client := newTestCache(t)
	ctx := context.Background()

	cm := NewCacheManager(client)

	if err := cm.Roster.Set(ctx, "course:5:page:1", []cachedCourse{}, RosterCacheConfig.TTL); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cm.Exists.Set(ctx, "enrollment:5:s1", true, ExistsCacheConfig.TTL); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	InvalidateEnrollmentCache(ctx, cm, 5, "s1")

	if exists, _ := cm.Roster.Exists(ctx, "course:5:page:1"); exists {
		t.Error("Roster view should be invalidated after enrollment change")
	}
}

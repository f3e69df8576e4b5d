package cache

import (
	"context"
	"fmt"
	"time"
)

// Key layout.
const (
	ApplicantListKey      = "applicants:all"
	ProjectCatalogKey     = "projects:catalog"
	RevokedTokenKeyPrefix = "admin:revoked:%s"
)

// TTLs.
const (
	ApplicantListTTL  = 1 * time.Minute
	ProjectCatalogTTL = 30 * time.Minute
)

// RevokedTokenKey is the key marking a token id as revoked.
func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, jti)
}

// Invalidate deletes keys, ignoring errors.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateApplicants drops the cached applicant list. Single applicants are
// never cached because the stored resume location is not part of their JSON.
func InvalidateApplicants(ctx context.Context) {
	Invalidate(ctx, ApplicantListKey)
}

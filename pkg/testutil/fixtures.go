package testutil

import (
	"github.com/google/uuid"
)

// Fixed IDs for deterministic testing.
var (
	TestTenantID    = uuid.MustParse("00000000-0000-0000-0000-000000000010").String()
	TestBorrowerID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001").String()
	TestBorrowerID2 = uuid.MustParse("00000000-0000-0000-0000-000000000002").String()
	TestTokenID     = "rwa-token-0001"
)

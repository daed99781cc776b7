package client

import (
	"fmt"

	"github.com/dmitrijs2005/talentmatch/internal/common"
)

// ErrUnavailable is returned when the service cannot be reached. It wraps
// common.ErrStoreUnavailable so it renders as a retryable outage.
var ErrUnavailable = fmt.Errorf("server unavailable: %w", common.ErrStoreUnavailable)

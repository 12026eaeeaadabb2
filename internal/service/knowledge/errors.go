package knowledge

import appErrors "github.com/Raghvendrath3/conceptForge/pkg/errors"

var (
	errSnippetOnly     = appErrors.NewValidation("execution logging only available for snippet nodes")
	errContentRequired = appErrors.NewValidation("content is required")
	errNodeIDRequired  = appErrors.NewValidation("target node id is required")
)

package dashboard

import (
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-market-pulse/pkg/sources"
)

// Message converts a fetch failure into the text shown in the error panel.
func Message(err error) string {
	if err == nil {
		return ""
	}
	switch sources.Classify(err) {
	case sources.KindTimeout:
		return "The news service took too long to respond."
	case sources.KindRemote:
		var fe *sources.FetchError
		if errors.As(err, &fe) && fe.Status >= 300 {
			return fmt.Sprintf("The news service returned an error (status %d).", fe.Status)
		}
		return "The news service returned an invalid response."
	default:
		return "Unable to reach the news service. Check your internet connection."
	}
}

package fetcher

// Fetcher is the contract for fetching one page of a remote source.
type Fetcher interface {
	// Get retrieves the body of a single URL with one synchronous request.
	Get(url string) ([]byte, error)
}

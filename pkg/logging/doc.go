// Package logging builds the slog loggers used by the mock server and CLI.
//
// Library code takes a *slog.Logger through an option and falls back to
// Nop(), so tests see no output unless they ask for it:
//
//	logger, err := logging.FromFlags("debug", "json", os.Stderr)
//	if err != nil {
//	    return err
//	}
//	mock, err := httpmock.New("api", true, httpmock.WithLogger(logger))
//
// Every MockServer tags its records with mock=<base URL> via ForServer.
package logging

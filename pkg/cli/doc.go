// Package cli implements the httpmock command line.
//
// The serve command loads setup files, starts a mock server and runs until
// interrupted, then prints the teardown result and fails when the run had
// unexpected requests, handler failures or unmet required setups:
//
//	httpmock serve -f mocks/ --strict
//	httpmock serve -f 'testdata/**/*.yaml' --duration 30s
//
// The validate command checks setup files without serving them:
//
//	httpmock validate -f mocks.yaml
package cli

// Package config loads declarative setup files and registers them on a
// mock server.
//
// A setup file is YAML or JSON, chosen by extension (.yaml and .yml are YAML,
// anything else JSON). ${VAR} and ${VAR:-default} references are expanded
// from the environment before parsing:
//
//	prefix: api
//	strict: true
//	setups:
//	  - endpoint: users/42
//	    method: GET
//	    headers:
//	      X-Request-Id: abc
//	    body:
//	      id: "42"
//	      name: Ada
//	  - endpoint: users
//	    method: POST
//	    required: true
//	    status: 201
//	    match:
//	      headers:
//	        Authorization: Bearer *
//	      jsonPath:
//	        $.role: admin
//
// Several files can be combined with Load, which also accepts directories
// and ** glob patterns:
//
//	file, err := config.Load("testdata/**/*.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := file.Validate(); err != nil {
//	    return err
//	}
//	mock, err := httpmock.New(file.Prefix, file.Strict, file.Options()...)
//	...
//	if _, err := file.Register(mock); err != nil {
//	    return err
//	}
package config

// Package config provides configuration types and loading for the counterfeit server.
//
// This package defines:
//   - ServerConfiguration: base directory, listener, selection policy, logging
//   - MutationConfig: one entry of the response mutation chain
//
// File-based Configuration:
//
// Configuration can be loaded from YAML, TOML or JSON; the format is chosen
// by file extension:
//
//	cfg, err := config.LoadFromFile("counterfeit.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A YAML example:
//
//	baseDir: ./responses
//	port: 3000
//	createMissing: true
//	mutations:
//	  - name: slow-orders
//	    type: delay
//	    paths: ["/orders/**"]
//	    min: 50ms
//	    max: 200ms
//	  - name: trace
//	    type: requestId
//
// Environment variables (COUNTERFEIT_*) override file values; see ApplyEnv.
package config

// Package cli implements the counterfeit command line.
//
//	counterfeit [serve]   run the mock server (default)
//	counterfeit validate  check a configuration file and base directory
//	counterfeit config    print the resolved configuration
//	counterfeit version   print build information
package cli

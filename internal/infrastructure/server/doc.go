// Package server wires configuration, the sandbox pipeline, the workspace
// and the API surfaces into one HTTP server.
//
// Example Usage:
//
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    return err
//	}
//	defer srv.Close()
//	return srv.Run()
package server

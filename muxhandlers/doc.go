// Package muxhandlers provides HTTP middleware for mux routers.
//
// CORSMiddleware answers preflight requests and sets CORS response headers.
// Allowed methods default to the methods declared for the request path in
// the router's route table:
//
//	r := mux.New(api)
//	corsMW, err := muxhandlers.CORSMiddleware(r, muxhandlers.CORSConfig{
//	    AllowedOrigins: []string{"https://*.example.com"},
//	    MaxAge:         600,
//	})
//	if err != nil {
//	    return err
//	}
//	r.Use(corsMW)
package muxhandlers

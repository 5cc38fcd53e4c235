/*
 * tumblr-import imports posts from a Tumblr JSON archive into a post store.
 * Copyright © 2024 Musing Studio LLC.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

// Package api exposes imported posts, including the fields the import adds,
// over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	tumblrimport "github.com/writeas/tumblr-import"
)

// Post is the JSON shape of a stored post.
type Post struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	Type            string   `json:"type"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	ContentFiltered string   `json:"content_filtered"`
	Date            string   `json:"date"`
	Modified        string   `json:"modified"`
	Meta            PostMeta `json:"meta"`
}

type PostMeta struct {
	TumblrData   string `json:"_tumblr_data"`
	TumblrPostID int64  `json:"_tumblr_post_id"`
}

// Server answers only for one site id; other sites get 404.
// TODO: require a bearer token before exposing raw Tumblr metadata.
type Server struct {
	posts  tumblrimport.PostReader
	siteID string
	log    *logrus.Logger
	router chi.Router
}

func NewServer(posts tumblrimport.PostReader, siteID string, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{posts: posts, siteID: siteID, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/sites/{siteID}/posts/{id}", s.handleGetPost)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "siteID") != s.siteID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	id := chi.URLParam(r, "id")
	p, err := s.posts.GetPost(r.Context(), id)
	if err != nil {
		s.log.WithError(err).WithField("post_id", id).Error("Failed to get post")
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	writeJSON(w, http.StatusOK, Post{
		ID:              p.ID,
		Status:          p.Status,
		Type:            p.Type,
		Title:           p.Title,
		Content:         p.Content,
		ContentFiltered: p.ContentFiltered,
		Date:            p.Date,
		Modified:        p.Modified,
		Meta: PostMeta{
			TumblrData:   p.Meta.TumblrData,
			TumblrPostID: p.Meta.TumblrPostID,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Infof("Serving site %s on %s", s.siteID, addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

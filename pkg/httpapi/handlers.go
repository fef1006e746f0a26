package httpapi

import (
	"bufio"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	s.writeMu.Lock()
	val, found, err := s.tree.Get(s.store, []byte(key))
	s.writeMu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(val.Bytes())
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.writeMu.Lock()
	err = s.put(key, value)
	s.writeMu.Unlock()

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) put(key string, value []byte) error {
	txn, err := s.tree.BeginTxn()
	if err != nil {
		return err
	}
	if err := s.tree.Upsert(s.store, txn, []byte(key), value); err != nil {
		return err
	}
	return s.tree.EndTxn(s.store, txn)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/octet-stream")
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	err := s.tree.Scan(s.store, func(key, value []byte) error {
		if _, err := bw.Write(key); err != nil {
			return err
		}
		if err := bw.WriteByte('\t'); err != nil {
			return err
		}
		if _, err := bw.Write(value); err != nil {
			return err
		}
		return bw.WriteByte('\n')
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

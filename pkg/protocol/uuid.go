package protocol

import "github.com/google/uuid"

// OfflineUUID derives the deterministic offline-mode player UUID for a
// username: a version-3 (MD5) UUID over "OfflinePlayer:"+username in the
// OID namespace. The same username always yields the same 16 bytes.
func OfflineUUID(username string) uuid.UUID {
	return uuid.NewMD5(uuid.NameSpaceOID, []byte("OfflinePlayer:"+username))
}

// ReadUUID decodes 16 raw bytes into a canonical 8-4-4-4-12 UUID string.
func (r *Reader) ReadUUID() (string, error) {
	b, err := r.ReadBytes(16)
	if err != nil {
		return "", err
	}
	u, err := uuid.FromBytes(b)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// WriteUUID encodes a UUID as its 16 raw bytes.
func (w *Writer) WriteUUID(u uuid.UUID) {
	w.WriteBytes(u[:])
}

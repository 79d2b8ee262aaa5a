package tracker

import (
	"crypto/sha1" //nolint:gosec // info-hash is a bittorrent protocol requirement, not a security boundary
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zeebo/bencode"
)

// ErrInvalidTorrent is returned when fetch_torrent_file bytes are empty or
// decode to a dictionary without an "info" key; bytes that are not valid
// bencode return the wrapped decode error instead.
var ErrInvalidTorrent = errors.New("tracker: invalid torrent file")

// InfoHash computes the 40-character lowercase-hex bittorrent info-hash of
// a .torrent file's bytes, re-encoding the decoded "info" dictionary and
// hashing that canonical form the way every bittorrent client does.
func InfoHash(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrInvalidTorrent
	}
	var metainfo map[string]any
	if err := bencode.DecodeBytes(data, &metainfo); err != nil {
		return "", fmt.Errorf("tracker: decode torrent: %w", err)
	}
	info, ok := metainfo["info"]
	if !ok {
		return "", ErrInvalidTorrent
	}
	infoBytes, err := bencode.EncodeBytes(info)
	if err != nil {
		return "", fmt.Errorf("tracker: encode info dict: %w", err)
	}
	sum := sha1.Sum(infoBytes) //nolint:gosec
	return hex.EncodeToString(sum[:]), nil
}

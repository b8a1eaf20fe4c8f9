// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package adobe

import (
	"github.com/tomtom215/adobe-destination/internal/models"
)

// Standard media metadata keys.
const (
	MetaAsset        = "a.media.asset"
	MetaShow         = "a.media.show"
	MetaSeason       = "a.media.season"
	MetaEpisode      = "a.media.episode"
	MetaGenre        = "a.media.genre"
	MetaNetwork      = "a.media.network"
	MetaFirstAirDate = "a.media.airDate"
	MetaOriginator   = "a.media.originator"
	MetaAdvertiser   = "a.media.ad.advertiser"
	MetaStreamFormat = "a.media.format"
)

// objectKind selects which media object a video event builds.
type objectKind string

const (
	objectPlayback objectKind = "Playback"
	objectContent  objectKind = "Content"
	objectAdBreak  objectKind = "Ad Break"
	objectAd       objectKind = "Ad"
)

// standardMetadataKeys copies video properties onto vendor metadata keys.
var standardMetadataKeys = map[string]string{
	"asset_id": MetaAsset,
	"program":  MetaShow,
	"season":   MetaSeason,
	"episode":  MetaEpisode,
	"genre":    MetaGenre,
	"channel":  MetaNetwork,
	"airdate":  MetaFirstAirDate,
}

// standardMetadata maps the well-known video properties for kind.
//
// publisher becomes the advertiser for Ad events whatever its value, for Ad
// Break events only when non-empty, and the originator for Content events
// when non-empty.
func standardMetadata(properties models.Map, kind objectKind) Metadata {
	out := Metadata{}
	for src, dst := range standardMetadataKeys {
		if v, ok := properties.Get(src); ok && !v.IsNull() {
			out[dst] = v.Text()
		}
	}

	if publisher, ok := properties.Get("publisher"); ok && !publisher.IsNull() {
		name, _ := publisher.AsString()
		nonEmpty := name != ""
		if kind == objectAd || (kind == objectAdBreak && nonEmpty) {
			out[MetaAdvertiser] = publisher.Text()
		} else if kind == objectContent && nonEmpty {
			out[MetaOriginator] = publisher.Text()
		}
	}

	out[MetaStreamFormat] = string(streamType(properties))
	return out
}

// mergeMetadata overlays the mapped context bundle on standard metadata.
// Bundle values win on key conflicts.
func mergeMetadata(standard Metadata, bundle models.Map) Metadata {
	out := make(Metadata, len(standard)+len(bundle))
	for k, v := range standard {
		out[k] = v
	}
	for k, v := range bundle {
		out[k] = v.Text()
	}
	return out
}

func streamType(properties models.Map) StreamType {
	if properties.BoolOr("livestream", false) {
		return StreamLive
	}
	return StreamVOD
}

func playbackInfo(properties models.Map) PlaybackInfo {
	return PlaybackInfo{
		Name:       properties.StringOr("title", ""),
		ID:         properties.StringOr("content_asset_id", ""),
		Length:     properties.FloatOr("total_length", 0),
		StreamType: streamType(properties),
		MediaType:  MediaVideo,
	}
}

func chapterInfo(properties models.Map) ChapterInfo {
	return ChapterInfo{
		Name:      properties.StringOr("title", ""),
		Position:  properties.IntOr("indexPosition", 0),
		Length:    properties.FloatOr("total_length", 0),
		StartTime: properties.FloatOr("start_time", 0),
	}
}

func adBreakInfo(properties models.Map) AdBreakInfo {
	return AdBreakInfo{
		Name:      properties.StringOr("title", ""),
		Position:  properties.IntOr("indexPosition", 0),
		StartTime: properties.FloatOr("start_time", 0),
	}
}

func adInfo(properties models.Map) AdInfo {
	return AdInfo{
		Name:     properties.StringOr("title", ""),
		ID:       properties.StringOr("asset_id", ""),
		Position: properties.IntOr("indexPosition", 0),
		Length:   properties.FloatOr("total_length", 0),
	}
}

// qoeInfo reads QoE figures from the mapped context bundle, defaulting to 0.
func qoeInfo(bundle models.Map) QoEInfo {
	read := func(key string) float64 {
		if v, ok := bundle.Get(key); ok {
			if f, ok := v.Numeric(); ok {
				return f
			}
		}
		return 0
	}
	return QoEInfo{
		Bitrate:       read("bitrate"),
		StartupTime:   read("startup_time"),
		FPS:           read("fps"),
		DroppedFrames: read("dropped_frames"),
	}
}

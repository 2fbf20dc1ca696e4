package models

// AdImage is one entry of ad_creative_images.
type AdImage struct {
	URL string `json:"url,omitempty"`
}

// AdVideo is one entry of ad_creative_videos.
type AdVideo struct {
	VideoURL string `json:"video_url,omitempty"`
}

// AdRecord is an archived ad as returned by the Ad Library ads_archive endpoint.
// Timestamps are kept as the upstream strings.
type AdRecord struct {
	ID                         string    `json:"id"`
	PageID                     string    `json:"page_id,omitempty"`
	PageName                   string    `json:"page_name,omitempty"`
	AdCreationTime             string    `json:"ad_creation_time,omitempty"`
	AdCreativeBodies           []string  `json:"ad_creative_bodies,omitempty"`
	AdCreativeLinkTitles       []string  `json:"ad_creative_link_titles,omitempty"`
	AdCreativeLinkDescriptions []string  `json:"ad_creative_link_descriptions,omitempty"`
	AdCreativeLinkCaptions     []string  `json:"ad_creative_link_captions,omitempty"`
	AdCreativeLinkURL          string    `json:"ad_creative_link_url,omitempty"`
	AdSnapshotURL              string    `json:"ad_snapshot_url,omitempty"`
	AdDeliveryStartTime        string    `json:"ad_delivery_start_time,omitempty"`
	AdDeliveryStopTime         string    `json:"ad_delivery_stop_time,omitempty"`
	AdCreativeImages           []AdImage `json:"ad_creative_images,omitempty"`
	AdCreativeVideos           []AdVideo `json:"ad_creative_videos,omitempty"`
}

// First returns the first element of s, or "" when s is empty.
func First(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

package response

type OccupancyScanResult struct {
	TripsScanned       int            `json:"trips_scanned"`
	CampaignsTriggered int            `json:"campaigns_triggered"`
	MessagesQueued     int            `json:"messages_queued"`
	TasksCreated       int            `json:"tasks_created"`
	Tiers              map[string]int `json:"tiers"`
	DryRun             bool           `json:"dry_run"`
}

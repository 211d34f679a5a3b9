package notes

// TranscriptionModel is the row type of the transcriptions table
type TranscriptionModel struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	FileName   string `gorm:"type:varchar(255);not null"`
	Transcript string `gorm:"type:text;not null"`
	Date       string `gorm:"type:varchar(10);index"`
	Time       string `gorm:"type:varchar(8)"`
}

// TableName pins the table name shared with existing databases
func (TranscriptionModel) TableName() string {
	return "transcriptions"
}

// SummarizationModel is the row type of the summarization table
type SummarizationModel struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	TranscriptionID uint   `gorm:"not null;index"`
	Summary         string `gorm:"type:text"`
	Keywords        string `gorm:"type:text"`

	Transcription *TranscriptionModel `gorm:"foreignKey:TranscriptionID;constraint:OnDelete:CASCADE"`
}

// TableName pins the table name shared with existing databases
func (SummarizationModel) TableName() string {
	return "summarization"
}

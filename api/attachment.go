package api

import (
	"encoding/json"
)

// AttachmentType is the type discriminator of attachments and attachment requests.
type AttachmentType string

const (
	ImageAttachmentType          AttachmentType = "image"
	VideoAttachmentType          AttachmentType = "video"
	AudioAttachmentType          AttachmentType = "audio"
	FileAttachmentType           AttachmentType = "file"
	StickerAttachmentType        AttachmentType = "sticker"
	ContactAttachmentType        AttachmentType = "contact"
	InlineKeyboardAttachmentType AttachmentType = "inline_keyboard"
	ReplyKeyboardAttachmentType  AttachmentType = "reply_keyboard"
	ShareAttachmentType          AttachmentType = "share"
	LocationAttachmentType       AttachmentType = "location"
	DataAttachmentType           AttachmentType = "data"
)

// Attachment is a received message attachment.
// Unrecognized types are decoded as *UnknownAttachment.
type Attachment interface {
	AttachmentType() AttachmentType
}

type Image struct {
	URL string `json:"url"`
}

type PhotoPayload struct {
	PhotoID int64  `json:"photo_id"`
	Token   string `json:"token"`
	URL     string `json:"url"`
}

type MediaPayload struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

type ImageAttachment struct {
	Payload PhotoPayload `json:"payload"`
}

func (a *ImageAttachment) AttachmentType() AttachmentType { return ImageAttachmentType }

func (a ImageAttachment) MarshalJSON() ([]byte, error) {
	type plain ImageAttachment
	return marshalTagged(typeKey, string(ImageAttachmentType), plain(a))
}

type VideoAttachment struct {
	Payload   MediaPayload `json:"payload"`
	Thumbnail *Image       `json:"thumbnail,omitempty"`
	Width     *int         `json:"width,omitempty"`
	Height    *int         `json:"height,omitempty"`
	Duration  *int         `json:"duration,omitempty"`
}

func (a *VideoAttachment) AttachmentType() AttachmentType { return VideoAttachmentType }

func (a VideoAttachment) MarshalJSON() ([]byte, error) {
	type plain VideoAttachment
	return marshalTagged(typeKey, string(VideoAttachmentType), plain(a))
}

type AudioAttachment struct {
	Payload       MediaPayload `json:"payload"`
	Transcription *string      `json:"transcription,omitempty"`
}

func (a *AudioAttachment) AttachmentType() AttachmentType { return AudioAttachmentType }

func (a AudioAttachment) MarshalJSON() ([]byte, error) {
	type plain AudioAttachment
	return marshalTagged(typeKey, string(AudioAttachmentType), plain(a))
}

type FileAttachment struct {
	Payload  MediaPayload `json:"payload"`
	Filename string       `json:"filename"`
	Size     int64        `json:"size"`
}

func (a *FileAttachment) AttachmentType() AttachmentType { return FileAttachmentType }

func (a FileAttachment) MarshalJSON() ([]byte, error) {
	type plain FileAttachment
	return marshalTagged(typeKey, string(FileAttachmentType), plain(a))
}

type StickerPayload struct {
	URL  string `json:"url"`
	Code string `json:"code"`
}

type StickerAttachment struct {
	Payload StickerPayload `json:"payload"`
	Width   int            `json:"width"`
	Height  int            `json:"height"`
}

func (a *StickerAttachment) AttachmentType() AttachmentType { return StickerAttachmentType }

func (a StickerAttachment) MarshalJSON() ([]byte, error) {
	type plain StickerAttachment
	return marshalTagged(typeKey, string(StickerAttachmentType), plain(a))
}

type ContactPayload struct {
	VCFInfo *string `json:"vcf_info,omitempty"`
	MaxInfo *User   `json:"max_info,omitempty"`
}

type ContactAttachment struct {
	Payload ContactPayload `json:"payload"`
}

func (a *ContactAttachment) AttachmentType() AttachmentType { return ContactAttachmentType }

func (a ContactAttachment) MarshalJSON() ([]byte, error) {
	type plain ContactAttachment
	return marshalTagged(typeKey, string(ContactAttachmentType), plain(a))
}

type InlineKeyboardAttachment struct {
	Payload Keyboard `json:"payload"`
}

func (a *InlineKeyboardAttachment) AttachmentType() AttachmentType {
	return InlineKeyboardAttachmentType
}

func (a InlineKeyboardAttachment) MarshalJSON() ([]byte, error) {
	type plain InlineKeyboardAttachment
	return marshalTagged(typeKey, string(InlineKeyboardAttachmentType), plain(a))
}

type ReplyKeyboardAttachment struct {
	Buttons ReplyButtonRows `json:"buttons"`
}

func (a *ReplyKeyboardAttachment) AttachmentType() AttachmentType {
	return ReplyKeyboardAttachmentType
}

func (a ReplyKeyboardAttachment) MarshalJSON() ([]byte, error) {
	type plain ReplyKeyboardAttachment
	return marshalTagged(typeKey, string(ReplyKeyboardAttachmentType), plain(a))
}

type SharePayload struct {
	URL   *string `json:"url,omitempty"`
	Token *string `json:"token,omitempty"`
}

type ShareAttachment struct {
	Payload     SharePayload `json:"payload"`
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	ImageURL    *string      `json:"image_url,omitempty"`
}

func (a *ShareAttachment) AttachmentType() AttachmentType { return ShareAttachmentType }

func (a ShareAttachment) MarshalJSON() ([]byte, error) {
	type plain ShareAttachment
	return marshalTagged(typeKey, string(ShareAttachmentType), plain(a))
}

type LocationAttachment struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (a *LocationAttachment) AttachmentType() AttachmentType { return LocationAttachmentType }

func (a LocationAttachment) MarshalJSON() ([]byte, error) {
	type plain LocationAttachment
	return marshalTagged(typeKey, string(LocationAttachmentType), plain(a))
}

type DataAttachment struct {
	Data string `json:"data"`
}

func (a *DataAttachment) AttachmentType() AttachmentType { return DataAttachmentType }

func (a DataAttachment) MarshalJSON() ([]byte, error) {
	type plain DataAttachment
	return marshalTagged(typeKey, string(DataAttachmentType), plain(a))
}

type UnknownAttachment struct {
	Type AttachmentType
	Raw  json.RawMessage
}

func (a *UnknownAttachment) AttachmentType() AttachmentType { return a.Type }

func (a UnknownAttachment) MarshalJSON() ([]byte, error) {
	return a.Raw, nil
}

var attachmentVariants = variants[Attachment]{
	key: typeKey,
	known: map[string]func() Attachment{
		string(ImageAttachmentType):          func() Attachment { return new(ImageAttachment) },
		string(VideoAttachmentType):          func() Attachment { return new(VideoAttachment) },
		string(AudioAttachmentType):          func() Attachment { return new(AudioAttachment) },
		string(FileAttachmentType):           func() Attachment { return new(FileAttachment) },
		string(StickerAttachmentType):        func() Attachment { return new(StickerAttachment) },
		string(ContactAttachmentType):        func() Attachment { return new(ContactAttachment) },
		string(InlineKeyboardAttachmentType): func() Attachment { return new(InlineKeyboardAttachment) },
		string(ReplyKeyboardAttachmentType):  func() Attachment { return new(ReplyKeyboardAttachment) },
		string(ShareAttachmentType):          func() Attachment { return new(ShareAttachment) },
		string(LocationAttachmentType):       func() Attachment { return new(LocationAttachment) },
		string(DataAttachmentType):           func() Attachment { return new(DataAttachment) },
	},
	unknown: func(kind string, raw json.RawMessage) Attachment {
		return &UnknownAttachment{Type: AttachmentType(kind), Raw: raw}
	},
}

// Attachments is a list of received attachments.
type Attachments []Attachment

func (as *Attachments) UnmarshalJSON(data []byte) error {
	values, err := attachmentVariants.decodeSlice(data)
	if err != nil {
		return err
	}

	*as = values
	return nil
}

// AttachmentRequest is an attachment of an outgoing message.
type AttachmentRequest interface {
	AttachmentType() AttachmentType
}

type PhotoToken struct {
	Token string `json:"token"`
}

type PhotoRequestPayload struct {
	URL    *string               `json:"url,omitempty"`
	Token  *string               `json:"token,omitempty"`
	Photos map[string]PhotoToken `json:"photos,omitempty"`
}

// UploadedInfo is the token of a file uploaded to an UploadEndpoint.
type UploadedInfo struct {
	Token string `json:"token"`
}

type ImageAttachmentRequest struct {
	Payload PhotoRequestPayload `json:"payload"`
}

func (r *ImageAttachmentRequest) AttachmentType() AttachmentType { return ImageAttachmentType }

func (r ImageAttachmentRequest) MarshalJSON() ([]byte, error) {
	type plain ImageAttachmentRequest
	return marshalTagged(typeKey, string(ImageAttachmentType), plain(r))
}

type VideoAttachmentRequest struct {
	Payload UploadedInfo `json:"payload"`
}

func (r *VideoAttachmentRequest) AttachmentType() AttachmentType { return VideoAttachmentType }

func (r VideoAttachmentRequest) MarshalJSON() ([]byte, error) {
	type plain VideoAttachmentRequest
	return marshalTagged(typeKey, string(VideoAttachmentType), plain(r))
}

type AudioAttachmentRequest struct {
	Payload UploadedInfo `json:"payload"`
}

func (r *AudioAttachmentRequest) AttachmentType() AttachmentType { return AudioAttachmentType }

func (r AudioAttachmentRequest) MarshalJSON() ([]byte, error) {
	type plain AudioAttachmentRequest
	return marshalTagged(typeKey, string(AudioAttachmentType), plain(r))
}

type FileAttachmentRequest struct {
	Payload UploadedInfo `json:"payload"`
}

func (r *FileAttachmentRequest) AttachmentType() AttachmentType { return FileAttachmentType }

func (r FileAttachmentRequest) MarshalJSON() ([]byte, error) {
	type plain FileAttachmentRequest
	return marshalTagged(typeKey, string(FileAttachmentType), plain(r))
}

type StickerAttachmentRequest struct {
	Payload struct {
		Code string `json:"code"`
	} `json:"payload"`
}

func (r *StickerAttachmentRequest) AttachmentType() AttachmentType { return StickerAttachmentType }

func (r StickerAttachmentRequest) MarshalJSON() ([]byte, error) {
	type plain StickerAttachmentRequest
	return marshalTagged(typeKey, string(StickerAttachmentType), plain(r))
}

type ContactRequestPayload struct {
	Name      *string `json:"name,omitempty"`
	ContactID *int64  `json:"contact_id,omitempty"`
	VCFInfo   *string `json:"vcf_info,omitempty"`
	VCFPhone  *string `json:"vcf_phone,omitempty"`
}

type ContactAttachmentRequest struct {
	Payload ContactRequestPayload `json:"payload"`
}

func (r *ContactAttachmentRequest) AttachmentType() AttachmentType { return ContactAttachmentType }

func (r ContactAttachmentRequest) MarshalJSON() ([]byte, error) {
	type plain ContactAttachmentRequest
	return marshalTagged(typeKey, string(ContactAttachmentType), plain(r))
}

type InlineKeyboardAttachmentRequest struct {
	Payload Keyboard `json:"payload"`
}

func (r *InlineKeyboardAttachmentRequest) AttachmentType() AttachmentType {
	return InlineKeyboardAttachmentType
}

func (r InlineKeyboardAttachmentRequest) MarshalJSON() ([]byte, error) {
	type plain InlineKeyboardAttachmentRequest
	return marshalTagged(typeKey, string(InlineKeyboardAttachmentType), plain(r))
}

type ReplyKeyboardAttachmentRequest struct {
	Direct       *bool           `json:"direct,omitempty"`
	DirectUserID *int64          `json:"direct_user_id,omitempty"`
	Buttons      ReplyButtonRows `json:"buttons"`
}

func (r *ReplyKeyboardAttachmentRequest) AttachmentType() AttachmentType {
	return ReplyKeyboardAttachmentType
}

func (r ReplyKeyboardAttachmentRequest) MarshalJSON() ([]byte, error) {
	type plain ReplyKeyboardAttachmentRequest
	return marshalTagged(typeKey, string(ReplyKeyboardAttachmentType), plain(r))
}

type LocationAttachmentRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r *LocationAttachmentRequest) AttachmentType() AttachmentType { return LocationAttachmentType }

func (r LocationAttachmentRequest) MarshalJSON() ([]byte, error) {
	type plain LocationAttachmentRequest
	return marshalTagged(typeKey, string(LocationAttachmentType), plain(r))
}

type ShareAttachmentRequest struct {
	Payload SharePayload `json:"payload"`
}

func (r *ShareAttachmentRequest) AttachmentType() AttachmentType { return ShareAttachmentType }

func (r ShareAttachmentRequest) MarshalJSON() ([]byte, error) {
	type plain ShareAttachmentRequest
	return marshalTagged(typeKey, string(ShareAttachmentType), plain(r))
}

// UploadType is the kind of file to be uploaded.
type UploadType string

const (
	UploadImage UploadType = "image"
	UploadVideo UploadType = "video"
	UploadAudio UploadType = "audio"
	UploadFile  UploadType = "file"
)

// UploadEndpoint is where the file contents should be sent.
type UploadEndpoint struct {
	URL   string  `json:"url"`
	Token *string `json:"token,omitempty"`
}

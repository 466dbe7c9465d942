package constants

const (
	// sheet names, kept from the spreadsheet the page used to post to
	GUESTBOOK_SHEET  = "방명록"
	ATTENDANCE_SHEET = "참석"

	DEFAULT_PREVIEW_LIMIT = 3
	DEFAULT_PAGE_SIZE     = 10

	// YYYY.MM.DD
	DISPLAY_DATE_FORMAT = "2006.01.02"
	DEFAULT_TIMEZONE    = "Asia/Seoul"

	DELETE_POLICY_ADMIN    = "admin"
	DELETE_POLICY_PASSWORD = "password"

	SIDE_GROOM_LABEL     = "신랑측"
	SIDE_BRIDE_LABEL     = "신부측"
	MEAL_PLANNED_LABEL   = "예정"
	MEAL_UNDECIDED_LABEL = "미정"
)

// Header rows are written once, the first time a sheet receives a row.
var (
	GUESTBOOK_HEADER  = []string{"ID", "이름", "메시지", "작성일", "비밀번호"}
	ATTENDANCE_HEADER = []string{"이름", "신랑/신부측", "인원", "식사여부", "등록일"}
)

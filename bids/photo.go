package bids

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"rasoi/db"
	"rasoi/models"
	"rasoi/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

var requestPicDir = "./static/requestpic"

// POST /api/custom-requests/:id/photo
// Attaches a reference photo of the dish to an open request and stores a
// 300px thumbnail alongside the original.
func UploadRequestPhoto(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	requestID := ps.ByName("id")

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, handler, err := r.FormFile("photo")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Photo file missing")
		return
	}
	defer file.Close()

	ext := filepath.Ext(handler.Filename)
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" {
		utils.RespondWithError(w, http.StatusBadRequest, "Unsupported file type")
		return
	}

	img, err := imaging.Decode(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid image")
		return
	}

	if err := os.MkdirAll(requestPicDir, 0755); err != nil {
		log.Printf("mkdir error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Unable to save file")
		return
	}

	id := utils.GetUUID()
	originalPath := filepath.Join(requestPicDir, fmt.Sprintf("%s%s", id, ext))
	thumbPath := filepath.Join(requestPicDir, fmt.Sprintf("%s_thumb%s", id, ext))

	if err := imaging.Save(img, originalPath); err != nil {
		log.Printf("image save error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Unable to save file")
		return
	}
	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbPath); err != nil {
		log.Printf("thumbnail save error: %v", err)
	}

	photoURL := "/static/requestpic/" + filepath.Base(originalPath)
	thumbURL := "/static/requestpic/" + filepath.Base(thumbPath)

	res, err := db.CustomRequestCollection.UpdateOne(ctx,
		bson.M{"requestId": requestID, "userId": userID, "status": models.RequestOpen},
		bson.M{"$set": bson.M{"photoUrl": photoURL, "thumbUrl": thumbURL, "updatedAt": time.Now()}},
	)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondError(w, utils.BadRequestError("Photo can only be added while the request is open"))
		return
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{"photoUrl": photoURL, "thumbUrl": thumbURL})
}
